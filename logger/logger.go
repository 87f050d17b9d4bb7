// Package logger wraps charmbracelet/log behind a narrow interface so the
// rest of yawlrun never imports a concrete logging library directly.
package logger

import (
	"context"

	charmlog "github.com/charmbracelet/log"
)

// Logger is the narrow contract the engine depends on.
type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
	With(kv ...any) Logger
}

type charmLogger struct {
	l *charmlog.Logger
}

// ToCharmlogLevel maps a LogLevel to the equivalent charmbracelet/log level.
func (lv LogLevel) ToCharmlogLevel() charmlog.Level {
	switch lv {
	case DebugLevel:
		return charmlog.DebugLevel
	case WarnLevel:
		return charmlog.WarnLevel
	case ErrorLevel:
		return charmlog.ErrorLevel
	case DisabledLevel:
		return charmlog.Level(1000)
	case InfoLevel:
		return charmlog.InfoLevel
	default:
		return charmlog.InfoLevel
	}
}

// NewLogger builds a Logger from cfg. A nil cfg resolves to TestConfig under
// `go test` and DefaultConfig otherwise.
func NewLogger(cfg *Config) Logger {
	if cfg == nil {
		if IsTestEnvironment() {
			cfg = TestConfig()
		} else {
			cfg = DefaultConfig()
		}
	}
	opts := charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      cfg.TimeFormat,
		ReportCaller:    cfg.AddSource,
	}
	if cfg.JSON {
		opts.Formatter = charmlog.JSONFormatter
	}
	out := cfg.Output
	l := charmlog.NewWithOptions(out, opts)
	l.SetLevel(cfg.Level.ToCharmlogLevel())
	return &charmLogger{l: l}
}

func (c *charmLogger) Debug(msg string, kv ...any) { c.l.Debug(msg, kv...) }
func (c *charmLogger) Info(msg string, kv ...any)  { c.l.Info(msg, kv...) }
func (c *charmLogger) Warn(msg string, kv ...any)  { c.l.Warn(msg, kv...) }
func (c *charmLogger) Error(msg string, kv ...any) { c.l.Error(msg, kv...) }

func (c *charmLogger) With(kv ...any) Logger {
	return &charmLogger{l: c.l.With(kv...)}
}

type ctxKey struct{}

// LoggerCtxKey is the context key under which a Logger is stored.
var LoggerCtxKey = ctxKey{}

// ContextWithLogger returns a new context carrying l.
func ContextWithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, LoggerCtxKey, l)
}

var fallback = NewLogger(nil)

// FromContext returns the Logger stored in ctx, or a process-wide fallback
// logger if ctx carries none (or an invalid value).
func FromContext(ctx context.Context) Logger {
	l, ok := ctx.Value(LoggerCtxKey).(Logger)
	if !ok || l == nil {
		return fallback
	}
	return l
}
