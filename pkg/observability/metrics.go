package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Plugin metrics
	PluginInitTotal       *prometheus.CounterVec
	PluginInitDuration    *prometheus.HistogramVec
	PluginHandlerTotal    *prometheus.CounterVec
	PluginHandlerDuration *prometheus.HistogramVec
	PluginsRegistered     prometheus.Gauge
	PluginsInitialized    prometheus.Gauge
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		registry: registry,

		// HTTP metrics
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "switchyard_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "switchyard_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		HTTPResponseSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "switchyard_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "route"},
		),

		// Plugin metrics
		PluginInitTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "switchyard_plugin_initializations_total",
				Help: "Total number of plugin initialization attempts",
			},
			[]string{"plugin", "status"},
		),
		PluginInitDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "switchyard_plugin_initialization_duration_seconds",
				Help:    "Plugin initialization duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"plugin"},
		),
		PluginHandlerTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "switchyard_plugin_handler_calls_total",
				Help: "Total number of plugin path handler invocations",
			},
			[]string{"plugin", "path", "status"},
		),
		PluginHandlerDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "switchyard_plugin_handler_duration_seconds",
				Help:    "Plugin path handler duration in seconds",
				Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"plugin", "path"},
		),
		PluginsRegistered: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "switchyard_plugins_registered",
				Help: "Number of registered plugins",
			},
		),
		PluginsInitialized: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "switchyard_plugins_initialized",
				Help: "Number of plugins whose upstream client is initialized",
			},
		),
	}

	// Register all metrics
	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPResponseSize,
		m.PluginInitTotal,
		m.PluginInitDuration,
		m.PluginHandlerTotal,
		m.PluginHandlerDuration,
		m.PluginsRegistered,
		m.PluginsInitialized,
	)

	return m
}

// Registry returns the Prometheus registry the metrics are registered with
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler returns the /metrics exposition handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordPluginInit records one initialization attempt
func (m *Metrics) RecordPluginInit(plugin string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.PluginInitTotal.WithLabelValues(plugin, status).Inc()
	m.PluginInitDuration.WithLabelValues(plugin).Observe(duration.Seconds())
}

// RecordPluginHandler records one handler invocation with the status it produced
func (m *Metrics) RecordPluginHandler(plugin, path string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	m.PluginHandlerTotal.WithLabelValues(plugin, path, strconv.Itoa(statusCode)).Inc()
	m.PluginHandlerDuration.WithLabelValues(plugin, path).Observe(duration.Seconds())
}

// SetPluginsRegistered sets the registered plugin gauge
func (m *Metrics) SetPluginsRegistered(count int) {
	if m == nil {
		return
	}
	m.PluginsRegistered.Set(float64(count))
}

// IncPluginsInitialized increments the initialized plugin gauge
func (m *Metrics) IncPluginsInitialized() {
	if m == nil {
		return
	}
	m.PluginsInitialized.Inc()
}

// responseWriter wraps http.ResponseWriter to capture status code and size
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += n
	return n, err
}

// routeLabel returns the matched mux path template so that parameterized
// routes do not explode label cardinality. Unmatched requests share one label.
func routeLabel(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return "unmatched"
}

// HTTPMetricsMiddleware instruments HTTP requests with Prometheus metrics.
// It must be installed with mux.Router.Use so the matched route is known.
func HTTPMetricsMiddleware(metrics *Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		if metrics == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rw, r)

			route := routeLabel(r)
			status := strconv.Itoa(rw.statusCode)

			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, status).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
			metrics.HTTPResponseSize.WithLabelValues(r.Method, route).Observe(float64(rw.bytesWritten))
		})
	}
}
