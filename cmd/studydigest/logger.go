package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/ericfisherdev/studydigest/internal/config"
)

// initLogger installs a text slog handler on stdout as the process default.
// Unknown levels fall back to INFO.
func initLogger(logLevel string) {
	var level slog.Level
	switch strings.ToUpper(logLevel) {
	case config.LogLevelError:
		level = slog.LevelError
	case config.LogLevelWarning:
		level = slog.LevelWarn
	case config.LogLevelDebug:
		level = slog.LevelDebug
	default:
		level = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
