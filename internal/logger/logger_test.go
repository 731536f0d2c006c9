// ABOUTME: Tests for slog configuration
// ABOUTME: Verifies level parsing, output format and the file-backed TUI log

package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseLevel(tt.in); got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestInit_JSONFormat(t *testing.T) {
	t.Cleanup(func() { Init(os.Stderr, "info", "text") })

	var buf bytes.Buffer
	Init(&buf, "info", "json")

	slog.Debug("hidden")
	slog.Info("Logged in", "username", "admin")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line at info level, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("expected JSON output: %v", err)
	}
	if entry["msg"] != "Logged in" || entry["username"] != "admin" {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestInit_TextFormat(t *testing.T) {
	t.Cleanup(func() { Init(os.Stderr, "info", "text") })

	var buf bytes.Buffer
	Init(&buf, "debug", "")

	slog.Debug("API request completed", "status", 200)

	if !strings.Contains(buf.String(), "msg=\"API request completed\"") {
		t.Errorf("expected text output, got %q", buf.String())
	}
}

func TestInitFile(t *testing.T) {
	t.Cleanup(func() { Init(os.Stderr, "info", "text") })

	dir := filepath.Join(t.TempDir(), "inventory")
	closer, err := InitFile(dir, "info", "text")
	if err != nil {
		t.Fatalf("InitFile() error: %v", err)
	}

	slog.Info("Session restored")
	closer.Close()

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("expected log file: %v", err)
	}
	if !strings.Contains(string(data), "Session restored") {
		t.Errorf("expected message in log file, got %q", data)
	}
}

func TestInitFile_NoConfigDir(t *testing.T) {
	t.Cleanup(func() { Init(os.Stderr, "info", "text") })

	closer, err := InitFile("", "info", "text")
	if err != nil {
		t.Fatalf("InitFile() error: %v", err)
	}
	if err := closer.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
}
