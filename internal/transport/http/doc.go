// Package http implements the HTTP handlers of the dashboard server. Handlers
// stay thin: they bind and validate query parameters, call a service and
// render the result.
//
// # Responses
//
// Successful JSON responses use the envelope
//
//	{"status": "success", "warning": "...", "data": {...}}
//
// where warning is present only when the sheet had no usable rows. Errors are
// RFC 7807 problem details rendered by errors.ErrorHandler:
//
//	{
//	    "type": "/errors/source/unreachable",
//	    "title": "Bad Gateway",
//	    "status": 502,
//	    "detail": "Failed to connect to Google Sheets",
//	    "instance": "/api/dashboard",
//	    "category": "NETWORK",
//	    "trace_id": "..."
//	}
//
// # Routes
//
//	GET /api/dashboard[?period=week|month|all]
//	GET /api/dashboard/{stats,table,series,insights}
//	GET /api/dashboard/export?format=csv|xlsx[&bom=true]
//	GET /api/health, /api/health/ready, /api/health/live, /api/version
//	GET /metrics
package http
