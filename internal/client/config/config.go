// Package config loads runtime configuration for the Inkwell CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables, optionally seeded from a .env file.
//  3. Optional JSON file selected via flags: -c or -config.
//  4. Command-line flags, which override earlier values.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the Inkwell CLI.
//
// Fields:
//   - ServerAddr: base URL of the backend HTTP endpoint.
//   - DatabasePath: path of the local SQLite database file.
//   - SyncInterval: how often the reconciliation loop ticks.
//   - SyncBatchSize: how many queued operations one tick may drain.
type Config struct {
	ServerAddr    string
	DatabasePath  string
	SyncInterval  time.Duration
	SyncBatchSize int
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerAddr = "http://127.0.0.1:8080"
	c.DatabasePath = defaultDatabasePath()
	c.SyncInterval = 1 * time.Second
	c.SyncBatchSize = 50
}

func defaultDatabasePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "inkwell.db"
	}
	return filepath.Join(dir, "inkwell", "inkwell.db")
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment, JSON (if present) and command-line flags (if present).
// Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
