package config

// HostConfig configures the contract host daemon.
type HostConfig struct {
	// chain configs
	ChainID        string `toml:"chain_id" mapstructure:"chain_id"`
	Bech32Prefix   string `toml:"bech32_prefix" mapstructure:"bech32_prefix"`
	BlockTimeSecs  int    `toml:"block_time_secs" mapstructure:"block_time_secs"`
	StorageBackend string `toml:"storage_backend" mapstructure:"storage_backend"` // memdb, goleveldb
	StorageDir     string `toml:"storage_dir" mapstructure:"storage_dir"`

	// genesis fixture, a local path or any go-getter source
	Fixture    string `toml:"fixture" mapstructure:"fixture"`
	FixtureDir string `toml:"fixture_dir" mapstructure:"fixture_dir"`

	// rpc configs
	Port           int      `toml:"port" mapstructure:"port"`
	Host           string   `toml:"host" mapstructure:"host"`
	AllowedOrigins []string `toml:"allowed_origins" mapstructure:"allowed_origins"`

	// rate limiting configs
	RatePerMinute         int `toml:"rate_per_minute" mapstructure:"rate_per_minute"`
	MaxConcurrentRequests int `toml:"max_concurrent_requests" mapstructure:"max_concurrent_requests"`

	// OpenTelemetry configs
	ServiceName    string `toml:"service_name" mapstructure:"service_name"`
	ServiceVersion string `toml:"service_version" mapstructure:"service_version"`
	Environment    string `toml:"environment" mapstructure:"environment"`
	EnableTracing  bool   `toml:"enable_tracing" mapstructure:"enable_tracing"`
	UseOTLPTraces  bool   `toml:"use_otlp_traces" mapstructure:"use_otlp_traces"`
	OTLPTracesURL  string `toml:"otlp_traces_url" mapstructure:"otlp_traces_url"`
	EnableMetrics  bool   `toml:"enable_metrics" mapstructure:"enable_metrics"`
	UsePrometheus  bool   `toml:"use_prometheus" mapstructure:"use_prometheus"`
	UseOTLPMetrics bool   `toml:"use_otlp_metrics" mapstructure:"use_otlp_metrics"`
	OTLPMetricsURL string `toml:"otlp_metrics_url" mapstructure:"otlp_metrics_url"`
	EnableLogs     bool   `toml:"enable_logs" mapstructure:"enable_logs"`
	UseOTLPLogs    bool   `toml:"use_otlp_logs" mapstructure:"use_otlp_logs"`
	OTLPLogsURL    string `toml:"otlp_logs_url" mapstructure:"otlp_logs_url"`
	InsecureOTLP   bool   `toml:"insecure_otlp" mapstructure:"insecure_otlp"`

	// Development mode uses stdout exporters
	DevelopmentMode bool `toml:"development_mode" mapstructure:"development_mode"`

	LogLevel string `toml:"log_level" mapstructure:"log_level"`
}

// Fixture seeds a fresh host: bank balances first, then contracts in order.
type Fixture struct {
	Balances  []BalanceFixture  `toml:"balances" json:"balances"`
	Contracts []ContractFixture `toml:"contracts" json:"contracts"`

	// ChainRegistry seeds a registry contract from a cosmos chain registry checkout.
	ChainRegistry *ChainRegistryFixture `toml:"chain_registry" json:"chain_registry,omitempty"`
}

type ChainRegistryFixture struct {
	Source   string   `toml:"source" json:"source"` // optional go-getter source, downloaded into Dir
	Dir      string   `toml:"dir" json:"dir"`
	Chains   []string `toml:"chains" json:"chains"`
	Registry string   `toml:"registry" json:"registry"` // label of the registry contract
	Sender   string   `toml:"sender" json:"sender"`
}

type BalanceFixture struct {
	Address string `toml:"address" json:"address"`
	Denom   string `toml:"denom" json:"denom"`
	Amount  string `toml:"amount" json:"amount"`
}

// ContractFixture instantiates one contract. Msg is the instantiate message
// as JSON; "$label" placeholders are replaced with the address of an earlier
// contract instantiated under that label.
type ContractFixture struct {
	Label  string `toml:"label" json:"label"`
	Kind   string `toml:"kind" json:"kind"` // ratelimiter, registry, affiliateswap, crosschainswaps
	Sender string `toml:"sender" json:"sender"`
	Msg    string `toml:"msg" json:"msg"`

	// Executes run right after instantiation, e.g. to register channel links.
	Executes []string `toml:"executes" json:"executes"`
}
