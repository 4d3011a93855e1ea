package clustering

import (
	"bytes"
	"io"
	"log"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/wildfly/wildfly-sub133/internal/telemetry/logger"
)

// hclogAdapter adapts logger.Logger to hclog.Logger so libraries that log
// through hclog or a standard *log.Logger end up in the kernel log.
type hclogAdapter struct {
	log     logger.Logger
	name    string
	implied []any
}

func newHCLogger(log logger.Logger, name string) *hclogAdapter {
	return &hclogAdapter{log: log.With("subsystem", name), name: name}
}

func (l *hclogAdapter) Log(level hclog.Level, msg string, args ...any) {
	switch level {
	case hclog.Trace, hclog.Debug:
		l.log.Debug(msg, args...)
	case hclog.Warn:
		l.log.Warn(msg, args...)
	case hclog.Error:
		l.log.Error(msg, args...)
	case hclog.Off:
	default:
		l.log.Info(msg, args...)
	}
}

func (l *hclogAdapter) Trace(msg string, args ...any) { l.Log(hclog.Trace, msg, args...) }
func (l *hclogAdapter) Debug(msg string, args ...any) { l.Log(hclog.Debug, msg, args...) }
func (l *hclogAdapter) Info(msg string, args ...any)  { l.Log(hclog.Info, msg, args...) }
func (l *hclogAdapter) Warn(msg string, args ...any)  { l.Log(hclog.Warn, msg, args...) }
func (l *hclogAdapter) Error(msg string, args ...any) { l.Log(hclog.Error, msg, args...) }

func (l *hclogAdapter) IsTrace() bool { return false }
func (l *hclogAdapter) IsDebug() bool { return true }
func (l *hclogAdapter) IsInfo() bool  { return true }
func (l *hclogAdapter) IsWarn() bool  { return true }
func (l *hclogAdapter) IsError() bool { return true }

func (l *hclogAdapter) ImpliedArgs() []any { return l.implied }

func (l *hclogAdapter) With(args ...any) hclog.Logger {
	return &hclogAdapter{
		log:     l.log.With(args...),
		name:    l.name,
		implied: append(append([]any(nil), l.implied...), args...),
	}
}

func (l *hclogAdapter) Name() string { return l.name }

func (l *hclogAdapter) Named(name string) hclog.Logger {
	if l.name != "" {
		name = l.name + "." + name
	}
	return l.ResetNamed(name)
}

func (l *hclogAdapter) ResetNamed(name string) hclog.Logger {
	return &hclogAdapter{log: l.log, name: name, implied: l.implied}
}

// SetLevel is a no-op; the kernel log level applies.
func (l *hclogAdapter) SetLevel(hclog.Level) {}

func (l *hclogAdapter) GetLevel() hclog.Level { return hclog.Debug }

func (l *hclogAdapter) StandardLogger(opts *hclog.StandardLoggerOptions) *log.Logger {
	return log.New(l.StandardWriter(opts), "", 0)
}

func (l *hclogAdapter) StandardWriter(opts *hclog.StandardLoggerOptions) io.Writer {
	infer := opts != nil && opts.InferLevels
	return &stdlogWriter{log: l, infer: infer}
}

// stdlogWriter turns standard logger lines into hclog calls. With level
// inference, a leading "[DEBUG]" style tag selects the level.
type stdlogWriter struct {
	log   hclog.Logger
	infer bool
}

func (w *stdlogWriter) Write(p []byte) (int, error) {
	line := string(bytes.TrimRight(p, " \t\n"))
	level := hclog.Info
	if w.infer {
		level, line = inferLevel(line)
	}
	w.log.Log(level, line)
	return len(p), nil
}

func inferLevel(line string) (hclog.Level, string) {
	tags := []struct {
		tag   string
		level hclog.Level
	}{
		{"[TRACE]", hclog.Trace},
		{"[DEBUG]", hclog.Debug},
		{"[INFO]", hclog.Info},
		{"[WARN]", hclog.Warn},
		{"[ERROR]", hclog.Error},
		{"[ERR]", hclog.Error},
	}
	for _, t := range tags {
		if rest, ok := strings.CutPrefix(line, t.tag); ok {
			return t.level, strings.TrimSpace(rest)
		}
	}
	return hclog.Info, line
}
