// Package app wires the dashboard server together: configuration, logging,
// OpenTelemetry, the row source and its credentials, the services, the chi
// router and the HTTP server.
//
// # Initialization Flow
//
//	1. Load configuration from defaults, config.yaml and SIGDASH_* variables
//	2. Initialize the slog logger and OpenTelemetry providers
//	3. Build the row source selected by source.kind
//	4. Create the dashboard and health services
//	5. Mount handlers behind the middleware chain
//
// # Graceful Shutdown
//
// Run stops on SIGINT or SIGTERM, lets in-flight requests finish within
// server.shutdown_timeout and flushes telemetry.
package app
