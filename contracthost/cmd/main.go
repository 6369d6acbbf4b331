package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/Cogwheel-Validator/spectra-contracts/contracthost/config"
	"github.com/Cogwheel-Validator/spectra-contracts/contracthost/genesis"
	"github.com/Cogwheel-Validator/spectra-contracts/contracthost/rpc"
	"github.com/Cogwheel-Validator/spectra-contracts/contracts/affiliateswap"
	"github.com/Cogwheel-Validator/spectra-contracts/contracts/crosschainswaps"
	"github.com/Cogwheel-Validator/spectra-contracts/contracts/ratelimiter"
	"github.com/Cogwheel-Validator/spectra-contracts/wasm/host"
	"github.com/Cogwheel-Validator/spectra-contracts/wasm/storage"
)

var log zerolog.Logger

func init() {
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log = zerolog.New(out).With().Timestamp().Logger()
	shareLogger(log)
}

func shareLogger(l zerolog.Logger) {
	rpc.SetLogger(l.With().Str("component", "rpc").Logger())
	genesis.SetLogger(l.With().Str("component", "genesis").Logger())
	host.SetLogger(l.With().Str("component", "host").Logger())
	ratelimiter.SetLogger(l.With().Str("component", "ratelimiter").Logger())
	affiliateswap.SetLogger(l.With().Str("component", "affiliateswap").Logger())
	crosschainswaps.SetLogger(l.With().Str("component", "crosschainswaps").Logger())
}

func main() {
	configPath := flag.String("config", "", "toml config file, CONTRACTHOST_* env vars are used when empty")
	fixture := flag.String("fixture", "", "genesis fixture to apply on start, overrides the config value")
	flag.Parse()

	var path *string
	if *configPath != "" {
		path = configPath
	}
	cfg, err := config.LoadHostConfig(path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if *fixture != "" {
		cfg.Fixture = *fixture
	}

	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		log = log.Level(level)
		shareLogger(log)
	}

	log.Info().
		Str("chain_id", cfg.ChainID).
		Str("storage", cfg.StorageBackend).
		Msg("Starting Spectra contract host")

	db, err := storage.OpenStore(cfg.StorageBackend, "contracthost", cfg.StorageDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open store")
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close store")
		}
	}()

	hostCfg := host.DefaultConfig()
	hostCfg.ChainID = cfg.ChainID
	hostCfg.Bech32Prefix = cfg.Bech32Prefix
	hostCfg.BlockTime = time.Duration(cfg.BlockTimeSecs) * time.Second
	hostCfg.GenesisTime = time.Now().UTC().Truncate(time.Second)
	h := host.NewHost(db, hostCfg, host.WithMetrics(host.NewMetrics(prometheus.DefaultRegisterer)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Fixture != "" {
		if err := applyFixture(ctx, h, cfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply genesis fixture")
		}
		log.Info().Strs("contracts", h.Contracts()).Msg("Genesis applied")
	}

	server, err := rpc.NewServer(ctx, buildServerConfig(cfg), h)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create RPC server")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Server error")
			sigCh <- syscall.SIGTERM
		}
	}()

	sig := <-sigCh
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Shutdown error")
	}
}

func applyFixture(ctx context.Context, h *host.Host, cfg *config.HostConfig) error {
	local := cfg.Fixture
	if _, err := os.Stat(local); err != nil {
		local, err = config.FetchFixture(ctx, cfg.Fixture, cfg.FixtureDir)
		if err != nil {
			return err
		}
	}
	fixture, err := config.NewFixtureLoader().LoadFromFile(local)
	if err != nil {
		return err
	}
	return genesis.Apply(ctx, h, fixture)
}

// buildServerConfig converts the loaded HostConfig to rpc.ServerConfig
func buildServerConfig(cfg *config.HostConfig) *rpc.ServerConfig {
	serverConfig := &rpc.ServerConfig{
		Address:        cfg.Host + ":" + strconv.Itoa(cfg.Port),
		AllowedOrigins: cfg.AllowedOrigins,
		EnableMetrics:  true,
	}
	if cfg.RatePerMinute > 0 {
		serverConfig.RatePerMinute = &cfg.RatePerMinute
	}
	if cfg.MaxConcurrentRequests > 0 {
		serverConfig.MaxConcurrentRequests = &cfg.MaxConcurrentRequests
	}

	if cfg.EnableTracing || cfg.EnableMetrics || cfg.EnableLogs {
		serverConfig.OTelConfig = &rpc.OTelConfig{
			ServiceName:     defaultString(cfg.ServiceName, "spectra-contracthost"),
			ServiceVersion:  defaultString(cfg.ServiceVersion, "1.0.0"),
			Environment:     defaultString(cfg.Environment, "development"),
			EnableTracing:   cfg.EnableTracing,
			UseOTLPTraces:   cfg.UseOTLPTraces,
			OTLPTracesURL:   cfg.OTLPTracesURL,
			EnableMetrics:   cfg.EnableMetrics,
			UsePrometheus:   cfg.UsePrometheus,
			UseOTLPMetrics:  cfg.UseOTLPMetrics,
			OTLPMetricsURL:  cfg.OTLPMetricsURL,
			EnableLogs:      cfg.EnableLogs,
			UseOTLPLogs:     cfg.UseOTLPLogs,
			OTLPLogsURL:     cfg.OTLPLogsURL,
			InsecureOTLP:    cfg.InsecureOTLP,
			DevelopmentMode: cfg.DevelopmentMode,
		}
	}
	return serverConfig
}

// defaultString returns def if s is empty
func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
