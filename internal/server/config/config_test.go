package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":8080", c.Addr)
	assert.NotEmpty(t, c.DatabaseDSN)
	assert.Equal(t, 30*24*time.Hour, c.SessionTTL)
	assert.Equal(t, 5, c.RateLimitMaxFailures)
	assert.Equal(t, 15*time.Minute, c.RateLimitWindow)
	assert.Equal(t, 15*time.Minute, c.RateLimitBlock)
	assert.True(t, c.SecureCookies)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 30*24*time.Hour, cfg.SessionTTL)
}
