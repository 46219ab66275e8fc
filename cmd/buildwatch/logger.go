package main

import (
	"log/slog"
	"os"

	"github.com/phsym/console-slog"
)

const timeFormat string = "2006-01-02 15:04:05.000"

func init() {
	setDefaultLogger(slog.LevelInfo)
}

// setDefaultLogger installs console logger to stderr.
// Debug level also adds source of the log line.
func setDefaultLogger(level slog.Level) {
	handler := console.NewHandler(os.Stderr, &console.HandlerOptions{
		Level:      level,
		TimeFormat: timeFormat,
		AddSource:  level <= slog.LevelDebug,
	})
	slog.SetDefault(slog.New(handler))
}
