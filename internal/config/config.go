// ABOUTME: Configuration loader for the inventory client and dev server
// ABOUTME: Loads settings from .env and environment variables with defaults

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const appName = "inventory"

type Config struct {
	// Client
	APIURL      string
	ConfigDir   string // session file and TUI debug log live here
	HTTPTimeout int    // seconds

	// Logging
	LogLevel  string
	LogFormat string

	// Dev server
	DevAddr     string
	DevSecret   string // HS256 signing key; empty means a random key per process
	DevTokenTTL int    // hours
}

// Timeout returns HTTPTimeout as a duration
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.HTTPTimeout) * time.Second
}

// TokenTTL returns DevTokenTTL as a duration
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.DevTokenTTL) * time.Hour
}

// LoadEnvFiles reads .env style files into the process environment.
// Variables already set win. Missing files are ignored.
func LoadEnvFiles(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", path, err)
		}
	}
	return nil
}

func Load() (*Config, error) {
	cfg := &Config{
		APIURL:      ensureScheme(getEnv("INVENTORY_API_URL", "http://localhost:8080")),
		ConfigDir:   getEnv("INVENTORY_CONFIG_DIR", DefaultConfigDir()),
		HTTPTimeout: getEnvInt("INVENTORY_HTTP_TIMEOUT", 30),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		DevAddr:     getEnv("INVENTORY_DEV_ADDR", ":8080"),
		DevSecret:   os.Getenv("INVENTORY_DEV_SECRET"),
		DevTokenTTL: getEnvInt("INVENTORY_DEV_TOKEN_TTL", 24),
	}

	if cfg.HTTPTimeout < 1 || cfg.HTTPTimeout > 600 {
		return nil, fmt.Errorf("INVENTORY_HTTP_TIMEOUT must be between 1 and 600, got %d", cfg.HTTPTimeout)
	}
	if cfg.DevTokenTTL < 1 {
		return nil, fmt.Errorf("INVENTORY_DEV_TOKEN_TTL must be at least 1, got %d", cfg.DevTokenTTL)
	}
	if cfg.DevSecret != "" && len(cfg.DevSecret) < 32 {
		return nil, fmt.Errorf("INVENTORY_DEV_SECRET must be at least 32 characters")
	}

	return cfg, nil
}

// DefaultConfigDir returns the default config directory following the XDG base directory layout
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// ensureScheme adds http:// prefix if the URL has no scheme and drops trailing slashes
func ensureScheme(url string) string {
	if url == "" {
		return url
	}
	url = strings.TrimRight(url, "/")
	if !strings.Contains(url, "://") {
		return "http://" + url
	}
	return url
}
