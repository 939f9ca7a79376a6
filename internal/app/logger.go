package app

import (
	"log/slog"
	"os"
)

// NewLogger builds the process logger. Production always emits JSON; other
// environments default to the text handler with source locations unless
// LOG_FORMAT forces JSON.
func NewLogger(cfg *Config) *slog.Logger {
	var handler slog.Handler
	if cfg.IsProduction() || cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{AddSource: true})
	}
	return slog.New(handler).With(slog.String("service", "wardgate"))
}
