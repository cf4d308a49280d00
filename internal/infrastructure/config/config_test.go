package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "0.0.0.0:8000", cfg.Server.Address())

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.False(t, cfg.RateLimit.Global)

	assert.Equal(t, "Durgas", cfg.FS.User)
	assert.Equal(t, 2*time.Second, cfg.Shell.CalcTimeout)

	require.NoError(t, cfg.Validate())
}

func TestLoadMatchesDefault(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":               "9000",
		"HOST":               "127.0.0.1",
		"LOG_LEVEL":          "debug",
		"LOG_DEV":            "true",
		"RATE_LIMIT_RPS":     "500",
		"RATE_LIMIT_BURST":   "1000",
		"RATE_LIMIT_ENABLED": "false",
		"RATE_LIMIT_GLOBAL":  "true",
		"VFS_USER":           "alice",
		"VFS_SEED_PATH":      "/etc/seed.yaml",
		"SHELL_CALC_TIMEOUT": "500ms",
		"SHELL_MAX_HISTORY":  "10",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, 500, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 1000, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.True(t, cfg.RateLimit.Global)
	assert.Equal(t, "alice", cfg.FS.User)
	assert.Equal(t, "/etc/seed.yaml", cfg.FS.SeedPath)
	assert.Equal(t, 500*time.Millisecond, cfg.Shell.CalcTimeout)
	assert.Equal(t, 10, cfg.Shell.MaxHistory)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown log level", "LOG_LEVEL", "verbose"},
		{"zero rps", "RATE_LIMIT_RPS", "0"},
		{"zero history", "SHELL_MAX_HISTORY", "0"},
		{"malformed duration", "SHELL_CALC_TIMEOUT", "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)

			// LoadOrDefault falls back instead of failing
			assert.Equal(t, Default(), LoadOrDefault())
		})
	}
}
