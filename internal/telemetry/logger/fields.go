package logger

import (
	"context"
	"maps"
)

// Fields is a diagnostic context: key/value pairs added to every entry
// logged through L. Values stored in a context are never mutated; every
// change produces a new map.
type Fields map[string]string

func fieldsFrom(ctx context.Context) Fields {
	f, _ := ctx.Value(fieldsKey).(Fields)
	return f
}

// WithField returns a context whose diagnostic fields include key=value.
func WithField(ctx context.Context, key, value string) context.Context {
	return WithFields(ctx, Fields{key: value})
}

// WithFields merges f into the diagnostic fields of ctx.
func WithFields(ctx context.Context, f Fields) context.Context {
	if len(f) == 0 {
		return ctx
	}
	merged := maps.Clone(fieldsFrom(ctx))
	if merged == nil {
		merged = make(Fields, len(f))
	}
	maps.Copy(merged, f)
	return context.WithValue(ctx, fieldsKey, merged)
}

// FieldsFromContext returns a snapshot of the diagnostic fields in ctx.
// The result is a copy and never nil.
func FieldsFromContext(ctx context.Context) Fields {
	f := maps.Clone(fieldsFrom(ctx))
	if f == nil {
		f = Fields{}
	}
	return f
}

// ReplaceFields returns a context whose diagnostic fields are exactly f.
// Any field present in ctx but absent from f is dropped.
func ReplaceFields(ctx context.Context, f Fields) context.Context {
	return context.WithValue(ctx, fieldsKey, maps.Clone(f))
}

// ClearFields returns a context without diagnostic fields.
func ClearFields(ctx context.Context) context.Context {
	if fieldsFrom(ctx) == nil {
		return ctx
	}
	return context.WithValue(ctx, fieldsKey, Fields(nil))
}
