package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Renderer  RendererConfig
	Host      HostConfig
	Transport TransportConfig
	History   HistoryConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// RendererConfig holds renderer process configuration.
type RendererConfig struct {
	HostURL        string `envconfig:"RENDERER_HOST_URL" default:"http://localhost:1879/"`
	ViewportWidth  int    `envconfig:"RENDERER_VIEWPORT_WIDTH" default:"1280"`
	ViewportHeight int    `envconfig:"RENDERER_VIEWPORT_HEIGHT" default:"800"`
	LibraryDir     string `envconfig:"RENDERER_LIBRARY_DIR" default:"./projects"`
}

// HostConfig holds development host server configuration.
type HostConfig struct {
	Port        string `envconfig:"PORT" default:"1879"`
	Host        string `envconfig:"HOST" default:"0.0.0.0"`
	HostType    string `envconfig:"HOST_TYPE" default:"browser"`
	ProjectsDir string `envconfig:"PROJECTS_DIR" default:"./projects"`
}

// TransportConfig holds renderer to host channel settings.
type TransportConfig struct {
	QueueSize        int           `envconfig:"TRANSPORT_QUEUE_SIZE" default:"256"`
	HandshakeTimeout time.Duration `envconfig:"TRANSPORT_HANDSHAKE_TIMEOUT" default:"2s"`
	WriteTimeout     time.Duration `envconfig:"TRANSPORT_WRITE_TIMEOUT" default:"5s"`
	ReadTimeout      time.Duration `envconfig:"TRANSPORT_READ_TIMEOUT" default:"30s"`
	PingInterval     time.Duration `envconfig:"TRANSPORT_PING_INTERVAL" default:"10s"`
	ReconnectDelay   time.Duration `envconfig:"TRANSPORT_RECONNECT_DELAY" default:"1s"`
	MaxReconnect     time.Duration `envconfig:"TRANSPORT_MAX_RECONNECT" default:"30s"`
}

// HistoryConfig holds edit history settings.
type HistoryConfig struct {
	MaxEntries int `envconfig:"HISTORY_MAX_ENTRIES" default:"500"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Renderer: RendererConfig{
			HostURL:        "http://localhost:1879/",
			ViewportWidth:  1280,
			ViewportHeight: 800,
			LibraryDir:     "./projects",
		},
		Host: HostConfig{
			Port:        "1879",
			Host:        "0.0.0.0",
			HostType:    "browser",
			ProjectsDir: "./projects",
		},
		Transport: TransportConfig{
			QueueSize:        256,
			HandshakeTimeout: 2 * time.Second,
			WriteTimeout:     5 * time.Second,
			ReadTimeout:      30 * time.Second,
			PingInterval:     10 * time.Second,
			ReconnectDelay:   time.Second,
			MaxReconnect:     30 * time.Second,
		},
		History: HistoryConfig{
			MaxEntries: 500,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}
