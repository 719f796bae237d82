// Package logging provides structured logging using uber/zap.
//
// Two output modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Every subsystem (store, transport, scheduler, host adapter, host server)
// receives a named child logger via Component, so log lines can be filtered
// by the "logger" field.
//
// Example Usage:
//
//	logger := logging.FromConfig(cfg.Logging.Level, cfg.Logging.Development, "renderer")
//	log := logger.Component("transport")
//	log.Info("connected", zap.String("endpoint", endpoint))
package logging
