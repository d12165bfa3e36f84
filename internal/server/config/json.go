package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/inkwellapp/inkwell/internal/flagx"
	"github.com/inkwellapp/inkwell/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "15m"
// or as integer nanoseconds.
type JsonConfig struct {
	Addr                 string         `json:"addr"`
	DatabaseDSN          string         `json:"database_dsn"`
	SessionTTL           timex.Duration `json:"session_ttl"`
	RateLimitMaxFailures int            `json:"rate_limit_max_failures"`
	RateLimitWindow      timex.Duration `json:"rate_limit_window"`
	RateLimitBlock       timex.Duration `json:"rate_limit_block"`
	AllowedOrigins       []string       `json:"allowed_origins"`
	SecureCookies        *bool          `json:"secure_cookies"`
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

	if jc.Addr != "" {
		cfg.Addr = jc.Addr
	}
	if jc.DatabaseDSN != "" {
		cfg.DatabaseDSN = jc.DatabaseDSN
	}
	if jc.SessionTTL.Duration != 0 {
		cfg.SessionTTL = time.Duration(jc.SessionTTL.Duration)
	}
	if jc.RateLimitMaxFailures != 0 {
		cfg.RateLimitMaxFailures = jc.RateLimitMaxFailures
	}
	if jc.RateLimitWindow.Duration != 0 {
		cfg.RateLimitWindow = time.Duration(jc.RateLimitWindow.Duration)
	}
	if jc.RateLimitBlock.Duration != 0 {
		cfg.RateLimitBlock = time.Duration(jc.RateLimitBlock.Duration)
	}
	if len(jc.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = jc.AllowedOrigins
	}
	if jc.SecureCookies != nil {
		cfg.SecureCookies = *jc.SecureCookies
	}
}
