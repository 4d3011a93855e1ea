package logger

import (
	"context"
	"maps"
	"slices"
)

type contextKey int

const (
	loggerKey contextKey = iota
	requestIDKey
	fieldsKey
)

// WithLogger stores l in ctx.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the logger stored in ctx, or Default.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey).(Logger); ok {
		return l
	}
	return Default()
}

// WithRequestID tags ctx with the management or invocation request ID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext returns the request ID in ctx, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// L returns the logger of ctx bound to ctx, so entries carry its request
// ID and diagnostic fields.
func L(ctx context.Context) Logger {
	return FromContext(ctx).WithContext(ctx)
}

func sortedKeys(f Fields) []string {
	return slices.Sorted(maps.Keys(f))
}
