// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"strconv"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"fwtest/internal/config"
)

// ParseLevel reads a level name or a numeric slog level
func ParseLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// New returns a text logger writing to a rotating file. verbose forces Debug.
// The returned closer releases the log file.
func New(cfg config.LogConfig, verbose bool) (*slog.Logger, io.Closer) {
	filename := strings.TrimSpace(cfg.Filename)
	if filename == "" {
		filename = config.DefaultLogFile
	}

	level := ParseLevel(cfg.Level, slog.LevelInfo)
	if verbose {
		level = slog.LevelDebug
	}

	writer := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}

	return NewWithWriter(writer, level), writer
}

// NewWithWriter returns a text logger writing to w at level
func NewWithWriter(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		AddSource: true,
		Level:     level,
	}))
}
