package config

import (
	"net/url"
	"slices"
	"strings"
)

// Sanitize returns a copy of the config with credentials masked.
//
// Used when logging the effective configuration.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	sanitized := *cfg
	sanitized.Clustering.Seeds = slices.Clone(cfg.Clustering.Seeds)

	sanitized.Clustering.Endpoint = maskURLPassword(sanitized.Clustering.Endpoint)
	for i, seed := range sanitized.Clustering.Seeds {
		sanitized.Clustering.Seeds[i] = maskURLPassword(seed)
	}
	return &sanitized
}

// maskURLPassword masks the password of a URL carrying user info.
// Values that are not URLs are returned unchanged.
func maskURLPassword(raw string) string {
	if !strings.Contains(raw, "@") {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	pw, ok := u.User.Password()
	if !ok {
		return raw
	}
	u.User = url.UserPassword(u.User.Username(), maskSecret(pw))
	return u.String()
}

// maskSecret masks a secret value for safe logging.
func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
