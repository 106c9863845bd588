// Package logger holds the process-wide zap logger. It is a no-op until Init runs so
// packages can log from tests without setup.
package logger

import (
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var current atomic.Pointer[zap.Logger]

func init() {
	current.Store(zap.NewNop())
}

// Options tune the global logger beyond its level.
type Options struct {
	// Format is "json" (default, production encoder) or "console" (development encoder).
	Format string
	// Service, when set, is attached to every entry.
	Service string
}

// Init installs a JSON logger at level. Unknown levels fall back to info.
func Init(level string) error {
	return InitWithOptions(level, Options{})
}

func InitWithOptions(level string, opts Options) error {
	cfg := zap.NewProductionConfig()
	if strings.EqualFold(strings.TrimSpace(opts.Format), "console") {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))

	built, err := cfg.Build()
	if err != nil {
		return err
	}
	if service := strings.TrimSpace(opts.Service); service != "" {
		built = built.With(zap.String("service", service))
	}
	Replace(built)
	return nil
}

func parseLevel(level string) zapcore.Level {
	lvl, err := zapcore.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// Replace swaps the global logger and returns a func restoring the previous one.
func Replace(l *zap.Logger) (restore func()) {
	if l == nil {
		l = zap.NewNop()
	}
	prev := current.Swap(l)
	return func() { current.Store(prev) }
}

func Logger() *zap.Logger {
	return current.Load()
}

// Sync flushes buffered entries. Errors from syncing a terminal are expected and ignored
// by callers.
func Sync() error {
	return Logger().Sync()
}

// WithModule returns a child logger tagged with module, e.g. "cache" or "http".
func WithModule(module string) *zap.Logger {
	return Logger().With(zap.String("module", module))
}
