package config

import "time"

// Default configuration values.
const (
	DefaultHTTPAddr            = "127.0.0.1:9990"
	DefaultHTTPReadTimeout     = 30 * time.Second
	DefaultHTTPWriteTimeout    = 60 * time.Second
	DefaultHTTPShutdownTimeout = 10 * time.Second

	DefaultMetricsPrefix      = "kernel"
	DefaultMetricsReadTimeout = 5 * time.Second

	DefaultAsyncWorkers       = 10
	DefaultAsyncQueue         = 1024
	DefaultEJBShutdownTimeout = 30 * time.Second
	DefaultAccessTimeout      = 5 * time.Second

	DefaultCacheName    = "sessions"
	DefaultCacheDataDir = "/var/lib/kernel-server/cache"

	DefaultChannelName = "ee"
	DefaultBindAddr    = "127.0.0.1"
	DefaultBindPort    = 7946

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr:            DefaultHTTPAddr,
				ReadTimeout:     DefaultHTTPReadTimeout,
				WriteTimeout:    DefaultHTTPWriteTimeout,
				ShutdownTimeout: DefaultHTTPShutdownTimeout,
			},
		},
		Metrics: MetricsSection{
			Enabled:     true,
			Prefix:      DefaultMetricsPrefix,
			Runtime:     true,
			ReadTimeout: DefaultMetricsReadTimeout,
		},
		EJB: EJBSection{
			AsyncWorkers:     DefaultAsyncWorkers,
			AsyncQueue:       DefaultAsyncQueue,
			ShutdownTimeout:  DefaultEJBShutdownTimeout,
			AccessTimeout:    DefaultAccessTimeout,
			SampleDeployment: true,
		},
		Cache: CacheSection{
			Name:     DefaultCacheName,
			DataDir:  DefaultCacheDataDir,
			InMemory: true,
		},
		Clustering: ClusteringSection{
			Channel:  DefaultChannelName,
			BindAddr: DefaultBindAddr,
			BindPort: DefaultBindPort,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
