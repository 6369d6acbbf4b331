package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LoadHostConfig loads the host config from the given toml file, or from
// CONTRACTHOST_* environment variables when no path is given.
func LoadHostConfig(configPath *string) (*HostConfig, error) {
	v := viper.New()
	setDefaults(v)

	if configPath == nil {
		config, err := loadEnv(v)
		if err != nil {
			return nil, fmt.Errorf("failed to load env config: %w", err)
		}
		return config, nil
	}
	config, err := loadFile(v, *configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load file config: %w", err)
	}
	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("chain_id", "osmosis-1")
	v.SetDefault("bech32_prefix", "osmo")
	v.SetDefault("block_time_secs", 6)
	v.SetDefault("storage_backend", "memdb")
	v.SetDefault("fixture_dir", "fixtures")
	v.SetDefault("host", "localhost")
	v.SetDefault("port", 8080)
	v.SetDefault("allowed_origins", []string{"*"})
	v.SetDefault("max_concurrent_requests", 200)
	v.SetDefault("service_name", "spectra-contracthost")
	v.SetDefault("service_version", "1.0.0")
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")
}

func loadEnv(v *viper.Viper) (*HostConfig, error) {
	// a missing .env is fine, the env may come from docker or systemd
	_ = godotenv.Load()
	v.SetEnvPrefix("CONTRACTHOST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	var config HostConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal env config: %w", err)
	}
	if err := verifyConfig(&config); err != nil {
		return nil, fmt.Errorf("failed to verify config: %w", err)
	}
	return &config, nil
}

// bindEnvKeys binds each config key to its env var so Unmarshal sees env values
// when no config file is loaded.
func bindEnvKeys(v *viper.Viper) {
	keys := []string{
		"chain_id", "bech32_prefix", "block_time_secs", "storage_backend", "storage_dir",
		"fixture", "fixture_dir",
		"port", "host", "allowed_origins",
		"rate_per_minute", "max_concurrent_requests",
		"service_name", "service_version", "environment",
		"enable_tracing", "use_otlp_traces", "otlp_traces_url",
		"enable_metrics", "use_prometheus", "use_otlp_metrics", "otlp_metrics_url",
		"enable_logs", "use_otlp_logs", "otlp_logs_url",
		"insecure_otlp", "development_mode", "log_level",
	}
	for _, k := range keys {
		_ = v.BindEnv(k)
	}
}

func loadFile(v *viper.Viper, configPath string) (*HostConfig, error) {
	if !strings.HasSuffix(configPath, ".toml") {
		return nil, fmt.Errorf("config file must be a toml file")
	}

	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config HostConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := verifyConfig(&config); err != nil {
		return nil, fmt.Errorf("failed to verify config: %w", err)
	}
	return &config, nil
}

func verifyConfig(config *HostConfig) error {
	if config.Port <= 0 || config.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	if config.Host == "" {
		return fmt.Errorf("host is required")
	}
	if config.ChainID == "" {
		return fmt.Errorf("chain_id is required")
	}
	if config.Bech32Prefix == "" || strings.ToLower(config.Bech32Prefix) != config.Bech32Prefix {
		return fmt.Errorf("bech32_prefix must be a non-empty lowercase string")
	}
	if config.BlockTimeSecs <= 0 {
		return fmt.Errorf("block_time_secs must be positive")
	}
	switch config.StorageBackend {
	case "memdb":
	case "goleveldb":
		if config.StorageDir == "" {
			return fmt.Errorf("storage_dir is required for the goleveldb backend")
		}
	default:
		return fmt.Errorf("unsupported storage_backend %q", config.StorageBackend)
	}
	if config.UseOTLPTraces && config.OTLPTracesURL == "" {
		return fmt.Errorf("otlp_traces_url is required when use_otlp_traces is set")
	}
	if config.UseOTLPMetrics && config.OTLPMetricsURL == "" {
		return fmt.Errorf("otlp_metrics_url is required when use_otlp_metrics is set")
	}
	if config.UseOTLPLogs && config.OTLPLogsURL == "" {
		return fmt.Errorf("otlp_logs_url is required when use_otlp_logs is set")
	}
	return nil
}
