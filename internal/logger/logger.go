// ABOUTME: Structured logging configuration using log/slog.
// ABOUTME: Provides Init() for terminal output and InitFile() for the TUI debug log.

package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// FileName is the TUI log file inside the config directory
const FileName = "debug.log"

// Init configures the default slog logger writing to w.
// level: debug, info, warn, error (default: info)
// format: text, json (default: text)
func Init(w io.Writer, level, format string) {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// InitFile points the default logger at <configDir>/debug.log so log lines
// never interfere with a full-screen terminal UI.
// If configDir is empty, logging is discarded.
func InitFile(configDir, level, format string) (io.Closer, error) {
	if configDir == "" {
		Init(io.Discard, level, format)
		return io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		Init(io.Discard, level, format)
		return io.NopCloser(nil), err
	}

	f, err := os.OpenFile(filepath.Join(configDir, FileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		Init(io.Discard, level, format)
		return io.NopCloser(nil), err
	}

	Init(f, level, format)
	return f, nil
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
