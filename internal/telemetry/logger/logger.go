package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// Logger is the logging surface used across the kernel. Implementations
// write structured entries; args are alternating key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
	WithContext(ctx context.Context) Logger
}

// Config holds logger configuration.
type Config struct {
	Level     string    // debug, info, warn, error
	Format    string    // json or text
	Output    io.Writer // nil means os.Stderr
	Component string    // added to every entry as "component" when set
	AddSource bool
}

// DefaultConfig returns the configuration used before the server config
// has been read.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "json", Output: os.Stderr}
}

// level is shared by every logger built with New so that a reload of the
// log section applies to loggers already handed out.
var level = new(slog.LevelVar)

type kernelLogger struct {
	sl  *slog.Logger
	ctx context.Context
}

// New builds a logger. Entries logged through a logger bound to a context
// (see WithContext) carry that context's request ID and diagnostic fields.
func New(cfg Config) (Logger, error) {
	level.Set(parseLevel(cfg.Level))

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			return redactSensitive(a)
		},
	}

	var h slog.Handler
	if f := strings.ToLower(cfg.Format); f == "text" || f == "console" {
		h = slog.NewTextHandler(out, opts)
	} else {
		h = slog.NewJSONHandler(out, opts)
	}

	sl := slog.New(contextHandler{h})
	if cfg.Component != "" {
		sl = sl.With("component", cfg.Component)
	}
	return &kernelLogger{sl: sl, ctx: context.Background()}, nil
}

// Nop returns a logger that discards everything. It does not touch the
// shared level.
func Nop() Logger {
	return &kernelLogger{sl: discard(), ctx: context.Background()}
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (l *kernelLogger) Debug(msg string, args ...any) { l.sl.DebugContext(l.ctx, msg, args...) }
func (l *kernelLogger) Info(msg string, args ...any)  { l.sl.InfoContext(l.ctx, msg, args...) }
func (l *kernelLogger) Warn(msg string, args ...any)  { l.sl.WarnContext(l.ctx, msg, args...) }
func (l *kernelLogger) Error(msg string, args ...any) { l.sl.ErrorContext(l.ctx, msg, args...) }

func (l *kernelLogger) With(args ...any) Logger {
	return &kernelLogger{sl: l.sl.With(args...), ctx: l.ctx}
}

func (l *kernelLogger) WithContext(ctx context.Context) Logger {
	return &kernelLogger{sl: l.sl, ctx: ctx}
}

// contextHandler copies the request ID and diagnostic fields of the
// record's context into the record.
type contextHandler struct {
	slog.Handler
}

func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		if id := RequestIDFromContext(ctx); id != "" {
			r.AddAttrs(slog.String("request_id", id))
		}
		for _, k := range sortedKeys(fieldsFrom(ctx)) {
			r.AddAttrs(slog.String(k, fieldsFrom(ctx)[k]))
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return contextHandler{h.Handler.WithAttrs(attrs)}
}

func (h contextHandler) WithGroup(name string) slog.Handler {
	return contextHandler{h.Handler.WithGroup(name)}
}

// SetLevel changes the level of every logger built with New.
func SetLevel(s string) {
	level.Set(parseLevel(s))
}

// GetLevel reports the shared level by name.
func GetLevel() string {
	switch level.Level() {
	case slog.LevelDebug:
		return "debug"
	case slog.LevelWarn:
		return "warn"
	case slog.LevelError:
		return "error"
	default:
		return "info"
	}
}

// parseLevel maps a level name to slog; unknown names mean info.
func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Slog returns the *slog.Logger behind l, for libraries that take one.
// Loggers not created here get a discarding logger.
func Slog(l Logger) *slog.Logger {
	if kl, ok := l.(*kernelLogger); ok {
		return kl.sl
	}
	return discard()
}

var defaultLogger atomic.Pointer[kernelLogger]

func init() {
	l, _ := New(DefaultConfig())
	defaultLogger.Store(l.(*kernelLogger))
}

// SetDefault replaces the process-wide logger and installs it as the slog
// default too.
func SetDefault(l Logger) {
	if kl, ok := l.(*kernelLogger); ok {
		defaultLogger.Store(kl)
		slog.SetDefault(kl.sl)
	}
}

// Default returns the process-wide logger.
func Default() Logger {
	return defaultLogger.Load()
}
