// Package slogx configures the process-wide structured logger for gatehouse
// and threads request-scoped loggers through context. Every record carries
// the service identity attributes so aggregated output can be filtered per
// deployment.
package slogx

import (
	"log/slog"
	"os"
	"strings"
)

// Config selects the handler, verbosity, and the identity attributes
// stamped onto every record.
type Config struct {
	Service string
	Version string
	Env     string // "dev" additionally records source locations
	Level   string // "debug", "info", "warn", "error"
	Format  string // "json" (default) or "text"
}

// New builds the root logger and installs it as the slog default, so
// anything logging through slog.Default lands in the same stream.
func New(cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     levelFrom(cfg.Level),
		AddSource: cfg.Env == "dev",
	}

	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, opts)
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler).With(
		"service", cfg.Service,
		"version", cfg.Version,
		"env", cfg.Env,
	)

	slog.SetDefault(logger)
	return logger
}

// levelFrom is forgiving: anything unrecognised logs at info.
func levelFrom(s string) slog.Level {
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
