package config

import (
	"crypto/rand"
	"encoding/hex"
	"os"

	"github.com/wildfly/wildfly-sub133/internal/cache"
	"github.com/wildfly/wildfly-sub133/internal/clustering"
	"github.com/wildfly/wildfly-sub133/internal/telemetry/logger"
)

// ToChannelConfig converts the clustering section into a channel
// configuration. An empty node name falls back to the host name.
func ToChannelConfig(cfg *ServerConfig) clustering.Config {
	c := cfg.Clustering
	name := c.NodeName
	if name == "" {
		name = generateNodeName()
	}
	return clustering.Config{
		Name:     c.Channel,
		NodeName: name,
		BindAddr: c.BindAddr,
		BindPort: c.BindPort,
		Seeds:    c.Seeds,
		Endpoint: c.Endpoint,
	}
}

// ToCacheConfig converts the cache section into a store configuration.
func ToCacheConfig(cfg *ServerConfig) cache.Config {
	c := cache.DefaultConfig(cfg.Cache.Name)
	c.InMemory = cfg.Cache.InMemory
	c.Dir = cfg.Cache.DataDir
	c.TTL = cfg.Cache.TTL
	return c
}

// ToLoggerConfig converts the log section into a logger configuration.
func ToLoggerConfig(cfg *ServerConfig) logger.Config {
	c := logger.DefaultConfig()
	if cfg.Log.Level != "" {
		c.Level = cfg.Log.Level
	}
	if cfg.Log.Format != "" {
		c.Format = cfg.Log.Format
	}
	return c
}

func generateNodeName() string {
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return "kernel-" + hex.EncodeToString(b)
}
