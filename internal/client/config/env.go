package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config with values from the environment. A .env file in
// the working directory seeds variables that are not already set; a missing
// file is not an error.
//
// Recognized variables:
//
//	INKWELL_SERVER_ADDR      base URL of the backend
//	INKWELL_DB_PATH          local database file
//	INKWELL_SYNC_INTERVAL    Go duration string, e.g. "1s"
//	INKWELL_SYNC_BATCH_SIZE  integer
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("INKWELL_SERVER_ADDR"); v != "" {
		cfg.ServerAddr = v
	}
	if v := os.Getenv("INKWELL_DB_PATH"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("INKWELL_SYNC_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.SyncInterval = d
		}
	}
	if v := os.Getenv("INKWELL_SYNC_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.SyncBatchSize = n
		}
	}
}
