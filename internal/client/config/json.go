package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/inkwellapp/inkwell/internal/flagx"
	"github.com/inkwellapp/inkwell/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "1s" or
// as integer nanoseconds.
type JsonConfig struct {
	ServerAddr    string         `json:"server_addr"`
	DatabasePath  string         `json:"database_path"`
	SyncInterval  timex.Duration `json:"sync_interval"`
	SyncBatchSize int            `json:"sync_batch_size"`
}

// parseJson overlays Config with values loaded from a JSON file resolved via
// the -c/-config flags. Absent flags mean no JSON is loaded. Only non-zero
// fields override.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerAddr != "" {
		cfg.ServerAddr = jc.ServerAddr
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.SyncInterval.Duration != 0 {
		cfg.SyncInterval = time.Duration(jc.SyncInterval.Duration)
	}
	if jc.SyncBatchSize != 0 {
		cfg.SyncBatchSize = jc.SyncBatchSize
	}
}
