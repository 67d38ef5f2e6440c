// SPDX-License-Identifier: MIT

// Package log owns the process-wide zerolog logger: configuration, component
// child loggers and request-scoped context plumbing.
package log

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config holds the one-time logger setup.
type Config struct {
	Level   string    // zerolog level name; LOG_LEVEL env or "info" when empty
	Output  io.Writer // defaults to os.Stdout
	Service string    // service name stamped on every entry
	Version string    // build version stamped on every entry
}

var (
	once sync.Once
	base zerolog.Logger
)

func parseLevel(name string) zerolog.Level {
	if name == "" {
		name = os.Getenv("LOG_LEVEL")
	}
	if lvl, err := zerolog.ParseLevel(name); err == nil && name != "" {
		return lvl
	}
	return zerolog.InfoLevel
}

// Configure initialises the global logger. Only the first call takes effect;
// later calls (including the implicit one from Base) are no-ops.
func Configure(cfg Config) {
	once.Do(func() {
		zerolog.SetGlobalLevel(parseLevel(cfg.Level))
		zerolog.TimeFieldFormat = time.RFC3339

		out := cfg.Output
		if out == nil {
			out = os.Stdout
		}
		service := cfg.Service
		if service == "" {
			service = "overlayd"
		}

		base = zerolog.New(out).With().
			Timestamp().
			Str("service", service).
			Str("version", cfg.Version).
			Logger()
	})
}

// Base returns the configured base logger, configuring defaults on first use.
func Base() zerolog.Logger {
	Configure(Config{})
	return base
}

// WithComponent returns a child logger annotated with a component name.
func WithComponent(component string) zerolog.Logger {
	return Base().With().Str(FieldComponent, component).Logger()
}
