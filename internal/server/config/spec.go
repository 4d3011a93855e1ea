package config

import "time"

// ServerConfig is the root configuration of kernel-server.
type ServerConfig struct {
	Server     ServerSection     `koanf:"server"`
	Metrics    MetricsSection    `koanf:"metrics"`
	EJB        EJBSection        `koanf:"ejb"`
	Cache      CacheSection      `koanf:"cache"`
	Clustering ClusteringSection `koanf:"clustering"`
	Security   SecuritySection   `koanf:"security"`
	Log        LogSection        `koanf:"log"`
}

// ServerSection holds listener configuration.
type ServerSection struct {
	HTTP  HTTPConfig  `koanf:"http"`
	Local LocalConfig `koanf:"local"`
}

// LocalConfig configures the local management socket. Callers on the
// socket are trusted as the local administrator without credentials.
type LocalConfig struct {
	// Socket is the Unix socket path. Empty disables the listener.
	Socket string `koanf:"socket"`
}

// HTTPConfig configures the HTTP listener serving metrics, management
// operations and remote invocations.
type HTTPConfig struct {
	Addr        string `koanf:"addr"`
	TLSCertFile string `koanf:"tls_cert_file"`
	TLSKeyFile  string `koanf:"tls_key_file"`

	// RateLimit is the per-client request rate in requests per second.
	// Zero disables rate limiting.
	RateLimit float64 `koanf:"rate_limit"`
	RateBurst int     `koanf:"rate_burst"`

	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// TLSEnabled reports whether both certificate and key are configured.
func (c HTTPConfig) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// MetricsSection configures the Prometheus exporter.
type MetricsSection struct {
	Enabled bool   `koanf:"enabled"`
	Prefix  string `koanf:"prefix"`
	// Runtime exposes Go runtime and process metrics on /metrics/runtime.
	Runtime     bool          `koanf:"runtime"`
	ReadTimeout time.Duration `koanf:"read_timeout"`
}

// EJBSection configures the bean container.
type EJBSection struct {
	AsyncWorkers     int           `koanf:"async_workers"`
	AsyncQueue       int           `koanf:"async_queue"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout"`
	AccessTimeout    time.Duration `koanf:"access_timeout"`
	SampleDeployment bool          `koanf:"sample_deployment"`
}

// CacheSection configures the session cache.
type CacheSection struct {
	Name     string        `koanf:"name"`
	DataDir  string        `koanf:"data_dir"`
	InMemory bool          `koanf:"in_memory"`
	TTL      time.Duration `koanf:"ttl"`
}

// ClusteringSection configures the cluster channel.
type ClusteringSection struct {
	Enabled  bool     `koanf:"enabled"`
	Channel  string   `koanf:"channel"`
	NodeName string   `koanf:"node_name"`
	BindAddr string   `koanf:"bind_addr"`
	BindPort int      `koanf:"bind_port"`
	Seeds    []string `koanf:"seeds"`
	// Endpoint is the URL other members use to reach this node.
	Endpoint string `koanf:"endpoint"`
}

// SecuritySection configures authentication.
type SecuritySection struct {
	UsersFile    string `koanf:"users_file"`
	AuthRequired bool   `koanf:"auth_required"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
