// Package middleware holds the HTTP middleware of the dashboard server:
// request IDs, structured access logs, panic recovery, rate limiting,
// request deadlines, CORS, security headers, OpenTelemetry instrumentation
// and query-string validation.
package middleware
