package config

import (
	"log/slog"
	"os"
)

// NewLogger builds the process logger. Production gets JSON at info
// level for log aggregation; everything else gets human-readable text
// with debug enabled.
func NewLogger(env string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}

	var handler slog.Handler
	if env == "production" {
		opts.Level = slog.LevelInfo
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		opts.AddSource = true
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler).With(slog.String("service", "facelens"))
}
