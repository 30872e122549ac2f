// Package logging wires slog for the daemon. A build tag splits the
// setup: dev builds log text to stdout, prod builds log to rotating
// files under the user config directory.
package logging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
)

// Config controls the handler built by Setup.
type Config struct {
	// Level is the minimum level emitted.
	Level slog.Level
	// Dir receives the rotated log files in prod builds. Empty picks
	// DefaultLogDir.
	Dir string
	// MaxSizeMB caps a single log file before rotation.
	MaxSizeMB int
	// MaxBackups caps how many rotated files are kept.
	MaxBackups int
	// MaxAgeDays expires rotated files by age.
	MaxAgeDays int
	// Compress gzips rotated files.
	Compress bool
	// AddSource annotates entries with file:line.
	AddSource bool
}

// DefaultConfig is what Setup uses when handed a nil config.
func DefaultConfig() *Config {
	return &Config{
		Level:      slog.LevelInfo,
		MaxSizeMB:  50,
		MaxBackups: 10,
		MaxAgeDays: 14,
		Compress:   true,
	}
}

// DefaultLogDir resolves where prod builds write their files. It walks
// down from os.UserConfigDir to os.UserCacheDir to os.TempDir so a
// missing HOME never breaks startup.
func DefaultLogDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		if dir, err = os.UserCacheDir(); err != nil {
			dir = os.TempDir()
		}
	}
	return filepath.Join(dir, "tapdash", "logs")
}

var globalLogger *slog.Logger

// L returns the logger installed by Setup, or slog.Default before any
// Setup call.
func L() *slog.Logger {
	if globalLogger != nil {
		return globalLogger
	}
	return slog.Default()
}

// ForSession returns the global logger enriched with session identity.
// Every log line a session emits carries its id and instance name.
func ForSession(sessionID, instance string) *slog.Logger {
	return L().With("session_id", sessionID, "instance", instance)
}

func setGlobal(logger *slog.Logger) {
	globalLogger = logger
	slog.SetDefault(logger)
}

type ctxKey struct{}

// With stores a logger in the context.
func With(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// From pulls the logger out of the context, falling back to L.
func From(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return L()
	}
	if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return L()
}

// WithAttrs enriches the context logger with extra attributes.
func WithAttrs(ctx context.Context, args ...any) context.Context {
	return With(ctx, From(ctx).With(args...))
}
