// Package middleware provides the host server's HTTP middleware.
//
//   - CORS: cross-origin access to the inspection endpoints
//   - RateLimit: per-IP token bucket with idle client eviction
//   - GlobalRateLimit: one token bucket for every client, used on the
//     WebSocket upgrade route to damp reconnect storms
//
// Example Usage:
//
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
