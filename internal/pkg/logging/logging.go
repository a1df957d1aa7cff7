// Package logging sets the process-wide slog default used by every
// service's cmd/ entry point and everything it wires up (service,
// repository, cache, broker layers all log through slog directly).
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Init installs a JSON slog handler at the given level as the process
// default. Unrecognized levels fall back to info.
func Init(level string) {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(level),
	})))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
