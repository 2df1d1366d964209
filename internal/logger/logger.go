// Package logger provides structured logging setup for barberiq.
package logger

import (
	"io"
	"log/slog"
	"strings"

	"github.com/neomorfeo/barberiq/internal/config"
)

// New creates a *slog.Logger from the given Logging config.
// Output is JSON to w with a "service" attribute on every record.
func New(cfg config.Logging, w io.Writer) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
	})

	return slog.New(handler).With("service", cfg.Service)
}

// parseLevel converts a string log level to slog.Level.
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
