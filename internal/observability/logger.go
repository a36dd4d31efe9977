package observability

import (
	"log/slog"
	"os"

	"github.com/munim110/ar-downscaling/internal/config"
)

// NewLogger builds the process-wide slog logger from config. LOG_FORMAT
// selects a text or JSON handler; LOG_LEVEL one of debug/info/warn/error.
func NewLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
