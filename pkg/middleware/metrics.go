package middleware

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vango-dev/routemount/pkg/router"
)

// MetricsConfig configures the Prometheus metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "routemount").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for scan and request duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// defaultMetricsConfig returns the default metrics configuration.
func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "routemount",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics collects Prometheus metrics for route scans and for requests
// served by mounted handlers.
//
// It implements router.Observer, and Instrument is a router.Decorator:
//
//	m := middleware.NewMetrics(middleware.WithRegistry(reg))
//	err := router.Mount(ctx, app, loader, spec,
//	    router.WithObserver(m),
//	    router.WithDecorators(m.Instrument),
//	)
//
// Metrics collected:
//   - routemount_scans_total: Counter of traversals by status
//   - routemount_scan_duration_seconds: Histogram of traversal duration
//   - routemount_routes_discovered: Gauge of routes found by the last traversal, by root
//   - routemount_routes_mounted_total: Counter of router registrations
//   - routemount_requests_total: Counter of requests by route, code and method
//   - routemount_request_duration_seconds: Histogram of request duration by route and method
type Metrics struct {
	scansTotal       *prometheus.CounterVec
	scanDuration     prometheus.Histogram
	routesDiscovered *prometheus.GaugeVec
	routesMounted    prometheus.Counter
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
}

var _ router.Observer = (*Metrics)(nil)

// NewMetrics creates and registers the metrics. Registering twice on the
// same registry panics, as with any promauto collector.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &Metrics{
		scansTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "scans_total",
			Help:        "Total number of route tree traversals",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),

		scanDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "scan_duration_seconds",
			Help:        "Route tree traversal duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		routesDiscovered: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "routes_discovered",
			Help:        "Number of routes produced by the last traversal of a root",
			ConstLabels: config.ConstLabels,
		}, []string{"root"}),

		routesMounted: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "routes_mounted_total",
			Help:        "Total number of routes registered with a router",
			ConstLabels: config.ConstLabels,
		}),

		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "requests_total",
			Help:        "Total number of requests served by mounted handlers",
			ConstLabels: config.ConstLabels,
		}, []string{"route", "code", "method"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "request_duration_seconds",
			Help:        "Request duration of mounted handlers in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"route", "method"}),
	}
}

// ScanCompleted implements router.Observer.
func (m *Metrics) ScanCompleted(root string, routes int, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.scansTotal.WithLabelValues(status).Inc()
	m.scanDuration.Observe(duration.Seconds())
	if err == nil {
		m.routesDiscovered.WithLabelValues(root).Set(float64(routes))
	}
}

// RouteMounted implements router.Observer.
func (m *Metrics) RouteMounted(path string) {
	m.routesMounted.Inc()
}

// Instrument wraps h so requests are counted and timed under the route
// label path. It has the router.Decorator signature.
func (m *Metrics) Instrument(path string, h http.Handler) http.Handler {
	labels := prometheus.Labels{"route": path}
	h = promhttp.InstrumentHandlerDuration(m.requestDuration.MustCurryWith(labels), h)
	return promhttp.InstrumentHandlerCounter(m.requestsTotal.MustCurryWith(labels), h)
}
