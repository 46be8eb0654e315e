// Package middleware provides the built-in routex plugins.
//
// Each plugin is a plugin.Subscriber of kind middleware. It runs once per
// discovered route, before the route is mounted, and wraps the route's
// handler:
//
//   - Metrics counts requests and observes durations per mount path and
//     mounts a Prometheus endpoint (default /metrics).
//   - Tracing starts an OpenTelemetry span per request, named after the
//     mount path.
//   - AccessLog writes one slog line per answered request and assigns a
//     request ID.
//   - Docs records every route and serves a JSON index (default
//     /docs/routes).
//
// Builtins returns a plugin.Catalog with all of them, so they can be
// enabled by name from configuration:
//
//	plugins:
//	  - name: metrics
//	  - name: docs
//	    options:
//	      path: /_routes
//
// The tracer uses the global OpenTelemetry tracer provider. Configure it
// before running routex:
//
//	otel.SetTracerProvider(tp)
package middleware
