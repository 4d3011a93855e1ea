package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var metricPrefixPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Verify validates the configuration. All problems are reported together.
func Verify(cfg *ServerConfig) error {
	return errors.Join(
		verifyServer(&cfg.Server),
		verifyMetrics(&cfg.Metrics),
		verifyEJB(&cfg.EJB),
		verifyCache(&cfg.Cache),
		verifyClustering(&cfg.Clustering),
		verifySecurity(&cfg.Security),
		verifyLog(&cfg.Log),
	)
}

func verifyServer(cfg *ServerSection) error {
	http := cfg.HTTP
	if _, _, err := net.SplitHostPort(http.Addr); err != nil {
		return fmt.Errorf("server.http.addr %q: %w", http.Addr, err)
	}
	if (http.TLSCertFile == "") != (http.TLSKeyFile == "") {
		return errors.New("server.http.tls_cert_file and server.http.tls_key_file must be set together")
	}
	for _, f := range []string{http.TLSCertFile, http.TLSKeyFile} {
		if f == "" {
			continue
		}
		if _, err := os.Stat(f); err != nil {
			return fmt.Errorf("server.http tls file: %w", err)
		}
	}
	if http.RateLimit < 0 {
		return errors.New("server.http.rate_limit must not be negative")
	}
	if http.RateLimit > 0 && http.RateBurst < 1 {
		return errors.New("server.http.rate_burst must be at least 1 when rate_limit is set")
	}
	return verifyLocal(&cfg.Local)
}

// maxSocketPath is the sun_path limit shared by Linux and the BSDs.
const maxSocketPath = 104

func verifyLocal(cfg *LocalConfig) error {
	if cfg.Socket == "" {
		return nil
	}
	if len(cfg.Socket) >= maxSocketPath {
		return fmt.Errorf("server.local.socket %q is longer than %d bytes", cfg.Socket, maxSocketPath-1)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Socket), 0o750); err != nil {
		return fmt.Errorf("cannot create local socket directory: %w", err)
	}
	return nil
}

func verifyMetrics(cfg *MetricsSection) error {
	if cfg.Prefix != "" && !metricPrefixPattern.MatchString(cfg.Prefix) {
		return fmt.Errorf("metrics.prefix %q is not a valid metric name prefix", cfg.Prefix)
	}
	if cfg.ReadTimeout < 0 {
		return errors.New("metrics.read_timeout must not be negative")
	}
	return nil
}

func verifyEJB(cfg *EJBSection) error {
	if cfg.AsyncWorkers < 1 {
		return errors.New("ejb.async_workers must be at least 1")
	}
	if cfg.AsyncQueue < 0 {
		return errors.New("ejb.async_queue must not be negative")
	}
	if cfg.ShutdownTimeout <= 0 {
		return errors.New("ejb.shutdown_timeout must be positive")
	}
	if cfg.AccessTimeout < 0 {
		return errors.New("ejb.access_timeout must not be negative")
	}
	return nil
}

func verifyCache(cfg *CacheSection) error {
	if cfg.Name == "" {
		return errors.New("cache.name is required")
	}
	if cfg.InMemory {
		return nil
	}
	if cfg.DataDir == "" {
		return errors.New("cache.data_dir is required unless cache.in_memory is set")
	}
	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		return fmt.Errorf("cannot create cache data directory: %w", err)
	}
	return nil
}

func verifyClustering(cfg *ClusteringSection) error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.Channel == "" {
		return errors.New("clustering.channel is required")
	}
	if cfg.BindPort < 0 || cfg.BindPort > 65535 {
		return fmt.Errorf("clustering.bind_port %d out of range", cfg.BindPort)
	}
	for _, seed := range cfg.Seeds {
		if strings.TrimSpace(seed) == "" {
			return errors.New("clustering.seeds contains an empty entry")
		}
	}
	return nil
}

func verifySecurity(cfg *SecuritySection) error {
	if cfg.AuthRequired && cfg.UsersFile == "" {
		return errors.New("security.users_file is required when security.auth_required is set")
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	switch strings.ToLower(cfg.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level %q: want debug, info, warn or error", cfg.Level)
	}
	switch strings.ToLower(cfg.Format) {
	case "", "json", "text":
	default:
		return fmt.Errorf("log.format %q: want json or text", cfg.Format)
	}
	return nil
}
