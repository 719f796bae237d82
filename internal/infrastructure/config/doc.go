// Package config provides 12-factor configuration management.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags in cmd/host and cmd/renderer override environment variables.
//
// Configuration Sections:
//   - Renderer: Host URL to boot from, viewport size, local project library
//   - Host: Development host listen address, advertised host type, projects dir
//   - Transport: WebSocket queue size, timeouts and reconnect backoff
//   - History: Edit history length limit
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting on the host HTTP surface
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Host listening on %s:%s\n", cfg.Host.Host, cfg.Host.Port)
//
// Environment Variables:
//   - RENDERER_HOST_URL, RENDERER_VIEWPORT_WIDTH, RENDERER_VIEWPORT_HEIGHT, RENDERER_LIBRARY_DIR
//   - PORT, HOST, HOST_TYPE, PROJECTS_DIR
//   - TRANSPORT_QUEUE_SIZE, TRANSPORT_*_TIMEOUT, TRANSPORT_PING_INTERVAL, TRANSPORT_RECONNECT_DELAY, TRANSPORT_MAX_RECONNECT
//   - HISTORY_MAX_ENTRIES
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
package config
