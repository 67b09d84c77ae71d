// Package middleware provides observability for mounted route trees.
//
// This package includes:
//   - Prometheus metrics for scans, registrations and requests
//   - OpenTelemetry tracing of requests reaching mounted handlers
//
// Both plug into package router: Metrics is a router.Observer, and
// Metrics.Instrument and Trace produce router.Decorator values that wrap
// every handler before registration.
//
//	m := middleware.NewMetrics()
//	err := router.Mount(ctx, router.NewChiRouter(r), loader, spec,
//	    router.WithObserver(m),
//	    router.WithDecorators(m.Instrument, middleware.Trace()),
//	)
//
// Then expose the metrics:
//
//	r.Handle("/metrics", promhttp.Handler())
package middleware
