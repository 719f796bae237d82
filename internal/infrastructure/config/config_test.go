package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Renderer config
	assert.Equal(t, "http://localhost:1879/", cfg.Renderer.HostURL)
	assert.Equal(t, 1280, cfg.Renderer.ViewportWidth)
	assert.Equal(t, 800, cfg.Renderer.ViewportHeight)

	// Host config
	assert.Equal(t, "1879", cfg.Host.Port)
	assert.Equal(t, "0.0.0.0", cfg.Host.Host)
	assert.Equal(t, "browser", cfg.Host.HostType)

	// Transport config
	assert.Equal(t, 256, cfg.Transport.QueueSize)
	assert.Equal(t, 5*time.Second, cfg.Transport.WriteTimeout)
	assert.Equal(t, time.Second, cfg.Transport.ReconnectDelay)

	// History config
	assert.Equal(t, 500, cfg.History.MaxEntries)

	// Logging config
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	// Rate limit config
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"RENDERER_HOST_URL":         "http://editor.local:9000/",
		"PORT":                      "9000",
		"HOST_TYPE":                 "node",
		"TRANSPORT_QUEUE_SIZE":      "16",
		"TRANSPORT_RECONNECT_DELAY": "250ms",
		"HISTORY_MAX_ENTRIES":       "10",
		"LOG_LEVEL":                 "debug",
		"LOG_DEV":                   "true",
		"RATE_LIMIT_ENABLED":        "false",
	}

	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://editor.local:9000/", cfg.Renderer.HostURL)
	assert.Equal(t, "9000", cfg.Host.Port)
	assert.Equal(t, "node", cfg.Host.HostType)
	assert.Equal(t, 16, cfg.Transport.QueueSize)
	assert.Equal(t, 250*time.Millisecond, cfg.Transport.ReconnectDelay)
	assert.Equal(t, 10, cfg.History.MaxEntries)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.False(t, cfg.RateLimit.Enabled)

	// Untouched sections keep their defaults
	assert.Equal(t, 5*time.Second, cfg.Transport.WriteTimeout)
}

func TestLoadOrDefaultOnInvalidValue(t *testing.T) {
	t.Setenv("TRANSPORT_QUEUE_SIZE", "lots")

	_, err := Load()
	assert.Error(t, err)

	cfg := LoadOrDefault()
	assert.Equal(t, 256, cfg.Transport.QueueSize)
}

func TestHistoryConfig(t *testing.T) {
	tests := []struct {
		name string
		max  string
		want int
	}{
		{name: "default", max: "", want: 500},
		{name: "unbounded", max: "0", want: 0},
		{name: "custom", max: "42", want: 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Unsetenv("HISTORY_MAX_ENTRIES")
			if tt.max != "" {
				t.Setenv("HISTORY_MAX_ENTRIES", tt.max)
			}

			cfg := LoadOrDefault()
			assert.Equal(t, tt.want, cfg.History.MaxEntries)
		})
	}
}
