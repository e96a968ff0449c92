// Package config loads and validates application configuration from
// environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Config holds all configuration values for the Dive Atlas backend.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Optional: when set,
	// the remote persistence adapter is selected at startup; when empty,
	// the service runs against the on-device local fallback. The choice is
	// made once — there is no mid-session failover.
	DatabaseURL string

	// UserID is the resolved session user for remote persistence, as
	// handed over by the auth collaborator. Optional; without it, remote
	// status mutations are rolled back with an auth-required outcome.
	// Must be a UUID when set.
	UserID string

	// StateDir is the directory for the local-fallback status file.
	// Defaults to <user config dir>/dive-atlas.
	StateDir string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:3000"] (Next.js dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string
}

// RemoteConfigured reports whether a remote backend is configured.
func (c Config) RemoteConfigured() bool {
	return c.DatabaseURL != ""
}

// Load reads configuration from environment variables and returns a Config.
// Nothing is strictly required — an empty environment yields a working
// local-fallback setup — but a malformed USER_ID is rejected.
func Load() (Config, error) {
	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		UserID:      os.Getenv("USER_ID"),
		StateDir:    os.Getenv("STATE_DIR"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000")),
	}

	if cfg.UserID != "" {
		if _, err := uuid.Parse(cfg.UserID); err != nil {
			return Config{}, fmt.Errorf("USER_ID is not a valid UUID: %w", err)
		}
	}

	if cfg.StateDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			base = os.TempDir()
		}
		cfg.StateDir = filepath.Join(base, "dive-atlas")
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring
// empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
