package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error", "critical":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if os.Getenv("SNAPCAL_LOG_FORMAT") == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// installs the default logger. An unknown level falls back to info.
func initLogging(level string) {
	lvl, err := parseLogLevel(level)
	slog.SetDefault(newLogger(os.Stderr, lvl))
	if err != nil {
		slog.Warn("falling back to info logging", "err", err)
	}
}

// tees the default logger into logPath as well as stderr. The returned
// closer restores nothing, it only closes the file.
func teeLogToFile(level, logPath string) (io.Closer, error) {
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	lvl, _ := parseLogLevel(level)
	slog.SetDefault(newLogger(io.MultiWriter(os.Stderr, f), lvl))
	return f, nil
}
