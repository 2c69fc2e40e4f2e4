package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "envelope-prober", cfg.AppName)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, time.Minute, cfg.ProbeInterval)
	assert.Equal(t, 6*time.Hour, cfg.StorageTTL)
	assert.Equal(t, time.Hour, cfg.StorageCleanupInterval)
	assert.False(t, cfg.RunOnce)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("BASE_URL", "https://api.example.com/v1")
	t.Setenv("PROBE_INTERVAL", "5")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("RUN_ONCE", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/v1", cfg.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.ProbeInterval)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.RunOnce)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"BASE_URL":                "not-a-url",
		"REQUEST_TIMEOUT_SECONDS": "0",
		"PROBE_INTERVAL":          "-1",
		"STORAGE_TTL_SECONDS":     "0",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
