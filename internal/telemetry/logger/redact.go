package logger

import (
	"log/slog"
	"strings"
)

// Value prefixes that mark a secret regardless of the key it is logged under.
var sensitiveValuePrefixes = []string{
	"$argon2id$", // stored password hash
	"Basic ",     // Authorization header value
}

var sensitiveKeyPatterns = []string{
	"password",
	"passwd",
	"secret",
	"credential",
	"authorization",
	"hash",
}

const redactedValue = "***REDACTED***"

func redactSensitive(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		v := a.Value.String()
		if v == "" {
			return a
		}
		if prefix, ok := sensitivePrefix(v); ok {
			return slog.String(a.Key, prefix+"***")
		}
		if IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
	case slog.KindGroup:
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			out[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}
	return a
}

func sensitivePrefix(v string) (string, bool) {
	for _, p := range sensitiveValuePrefixes {
		if strings.HasPrefix(v, p) {
			return p, true
		}
	}
	return "", false
}

// RedactString masks a value that looks like a credential, keeping only
// its scheme prefix. Other values are returned unchanged.
func RedactString(value string) string {
	if prefix, ok := sensitivePrefix(value); ok {
		return prefix + "***"
	}
	return value
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	for _, p := range sensitiveKeyPatterns {
		if strings.Contains(k, p) {
			return true
		}
	}
	return false
}

// IsSensitiveValue checks if a value appears to be a credential.
func IsSensitiveValue(value string) bool {
	_, ok := sensitivePrefix(value)
	return ok
}
