// Package logging configures zerolog for the card client and proxy.
//
// Setup installs the process-wide logger once at startup; packages derive
// their loggers from it with NewLogger so every line carries a component.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds logger configuration.
type Config struct {
	// Level is a LOG_LEVEL value: debug, info, warn (or warning), error.
	// Empty means info; unknown values fall back to info with a warning.
	Level string

	// Pretty switches from JSON lines to zerolog's console writer.
	Pretty bool

	// Output defaults to os.Stderr.
	Output io.Writer

	// Service is stamped on every line as "service" when set.
	Service string
}

// DefaultConfig returns the proxy's logging defaults.
func DefaultConfig() Config {
	return Config{
		Level:   "info",
		Service: "tcg-proxy",
	}
}

// ParseLevel maps a LOG_LEVEL value to a zerolog level.
func ParseLevel(s string) (zerolog.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return zerolog.InfoLevel, nil
	case "warning":
		s = "warn"
	}

	level, err := zerolog.ParseLevel(s)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}

// Setup configures the global zerolog logger and returns it.
func Setup(cfg Config) zerolog.Logger {
	level, levelErr := ParseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}
	}

	ctx := zerolog.New(out).With().Timestamp()
	if cfg.Service != "" {
		ctx = ctx.Str("service", cfg.Service)
	}
	logger := ctx.Logger()
	log.Logger = logger

	if levelErr != nil {
		logger.Warn().Err(levelErr).Msg("Using info log level")
	}
	return logger
}

// NewLogger derives a logger for one component (cache, server, ...) from the
// global logger. Call it after Setup.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}
