//go:build !prod

package logging

import (
	"log/slog"
	"os"
)

// Setup configures logging for development runs: a text handler on
// stdout so session activity is readable while watching the emulator.
// The returned close function is a no-op, nothing is buffered.
func Setup(cfg *Config) (*slog.Logger, func() error, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
	}))
	setGlobal(logger)

	return logger, func() error { return nil }, nil
}
