package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/routex-dev/routex/pkg/host"
)

// MetricsConfig configures the Prometheus metrics plugin.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "routex").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for request duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer

	// Gatherer serves the metrics endpoint.
	// Default: prometheus.DefaultGatherer
	Gatherer prometheus.Gatherer

	// Path is where the metrics endpoint is mounted (default: "/metrics").
	// An empty path after options disables the endpoint.
	Path string
}

// MetricsOption configures the Prometheus metrics plugin.
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

// WithRegistry registers metrics with reg and serves them from it.
func WithRegistry(reg *prometheus.Registry) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = reg
		c.Gatherer = reg
	}
}

// WithMetricsPath sets the mount path of the metrics endpoint.
func WithMetricsPath(path string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Path = path
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "routex",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
		Gatherer:  prometheus.DefaultGatherer,
		Path:      "/metrics",
	}
}

// Metrics is the metrics plugin. It implements plugin.Subscriber.
type Metrics struct {
	config MetricsConfig

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inFlight        *prometheus.GaugeVec
	routes          prometheus.Gauge

	endpoint sync.Once
	mountErr error
}

// NewMetrics creates the metrics plugin.
//
// Metrics collected:
//   - routex_requests_total: Counter of requests by mount path, method and status code
//   - routex_request_duration_seconds: Histogram of request duration by mount path
//   - routex_requests_in_flight: Gauge of requests being served by mount path
//   - routex_routes: Gauge of routes instrumented
//
// Creating the plugin twice against the same registry reuses the metrics
// already registered. The routes gauge restarts at zero for every new
// plugin, so a fresh mount pass counts only its own routes.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	m := &Metrics{
		config: config,
		requestsTotal: register(config.Registry, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "requests_total",
			Help:        "Total number of requests served by discovered routes",
			ConstLabels: config.ConstLabels,
		}, []string{"path", "method", "code"})),

		requestDuration: register(config.Registry, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "request_duration_seconds",
			Help:        "Request duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"path"})),

		inFlight: register(config.Registry, prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "requests_in_flight",
			Help:        "Number of requests currently being served",
			ConstLabels: config.ConstLabels,
		}, []string{"path"})),

		routes: register(config.Registry, prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "routes",
			Help:        "Number of routes instrumented",
			ConstLabels: config.ConstLabels,
		})),
	}
	m.routes.Set(0)
	return m
}

// register registers c, returning the existing collector if an identical
// one is already registered.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// Subscribe implements plugin.Subscriber. The first call mounts the
// metrics endpoint on app; if that fails every call reports the failure.
func (m *Metrics) Subscribe(_ context.Context, app host.Host, _, mountPath string, module http.Handler) (http.Handler, error) {
	m.endpoint.Do(func() {
		if m.config.Path == "" {
			return
		}
		m.mountErr = app.Mount(m.config.Path, promhttp.HandlerFor(m.config.Gatherer, promhttp.HandlerOpts{}))
	})
	if m.mountErr != nil {
		return nil, m.mountErr
	}

	m.routes.Inc()
	return m.Instrument(mountPath, module), nil
}

// Instrument wraps h with the request metrics for mountPath. Requests h
// passes on without writing are not counted.
func (m *Metrics) Instrument(mountPath string, h http.Handler) http.Handler {
	total := m.requestsTotal.MustCurryWith(prometheus.Labels{"path": mountPath})
	duration := m.requestDuration.WithLabelValues(mountPath)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := newRecorder(w)
		h.ServeHTTP(rec, r)

		if !rec.wrote {
			return
		}
		duration.Observe(time.Since(start).Seconds())
		total.WithLabelValues(strings.ToLower(r.Method), strconv.Itoa(rec.status)).Inc()
	})
	return promhttp.InstrumentHandlerInFlight(m.inFlight.WithLabelValues(mountPath), next)
}
