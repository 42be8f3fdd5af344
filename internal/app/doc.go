// Package app wires the dashboard server together.
//
// NewApplication initializes telemetry, loads the order dataset and builds
// the services, the WebSocket hub and the chi router. A dataset that fails to
// load is returned as an error so the caller can exit with status 1; the
// package never calls os.Exit itself.
//
// # Routes
//
//	/api/health, /api/health/ready, /api/health/live, /api/version
//	/api/dashboard/...     dashboard views and exports
//	/ws/dashboard          WebSocket range sessions
//	/metrics               Prometheus scrape endpoint
//
// Middleware order on the API group is RequestID, RealIP, OTel,
// StructuredLogger, Recoverer, SecurityHeaders, CORS, RateLimiter, Timeout.
// The WebSocket route only gets RequestID, RealIP, tracing and panic
// recovery, since the other middleware wrap the ResponseWriter.
//
// # Graceful Shutdown
//
// Run blocks until SIGINT or SIGTERM (or a serve failure), then shuts the
// HTTP server down, closes the open WebSocket sessions and flushes the
// telemetry providers.
package app
