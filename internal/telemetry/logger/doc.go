// Package logger provides structured logging for the kernel.
//
// This package wraps log/slog for structured logging:
//
//   - logger.go: logger configuration, levels and the global default
//   - context.go: request IDs and the logger carried in a context
//   - fields.go: the diagnostic context carried across invocations
//   - redact.go: sensitive data redaction
//
// Features:
//
//   - JSON and text output formats
//   - Log level filtering with runtime adjustment
//   - Automatic masking of credentials and password hashes
//   - Diagnostic fields that can be snapshotted and restored
package logger
