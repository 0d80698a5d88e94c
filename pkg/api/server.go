package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/platinummonkey/switchyard/pkg/httputil"
	"github.com/platinummonkey/switchyard/pkg/observability"
	"github.com/platinummonkey/switchyard/pkg/plugins"
)

// Server is the HTTP boundary in front of the plugin registry
type Server struct {
	registry *plugins.Registry
	router   *mux.Router
	logger   *logrus.Logger
	metrics  *observability.Metrics
	health   *observability.HealthChecker

	production   bool
	maxBodyBytes int64
	serviceName  string
}

// Option configures a Server
type Option func(*Server)

// WithMetrics enables request metrics and the /metrics route
func WithMetrics(metrics *observability.Metrics) Option {
	return func(s *Server) {
		s.metrics = metrics
	}
}

// WithProduction hides 5xx error messages from clients
func WithProduction(production bool) Option {
	return func(s *Server) {
		s.production = production
	}
}

// WithHealthChecker overrides the liveness checker
func WithHealthChecker(health *observability.HealthChecker) Option {
	return func(s *Server) {
		s.health = health
	}
}

// WithMaxBodyBytes limits request body size; zero disables the limit
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		s.maxBodyBytes = n
	}
}

// WithServiceName names the otelhttp server operation
func WithServiceName(name string) Option {
	return func(s *Server) {
		s.serviceName = name
	}
}

// NewServer creates a server and builds its route table from the plugins that
// are registered at this moment. Plugins registered later are not routed.
func NewServer(registry *plugins.Registry, logger *logrus.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	s := &Server{
		registry:    registry,
		router:      mux.NewRouter(),
		logger:      logger,
		serviceName: "switchyard",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.health == nil {
		s.health = observability.NewHealthChecker("")
	}

	s.setupRoutes()
	return s
}

// ServeHTTP implements http.Handler on the bare router
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Router exposes the underlying router for tests and route inspection
func (s *Server) Router() *mux.Router {
	return s.router
}

// Handler returns the router wrapped in the full middleware stack:
// tracing, panic recovery, request IDs, request logging and body limits.
func (s *Server) Handler() http.Handler {
	chain := httputil.Chain(
		httputil.RecoveryMiddleware(s.logger),
		httputil.RequestIDMiddleware,
		httputil.LoggingMiddleware(s.logger),
		httputil.MaxBytesMiddleware(s.maxBodyBytes),
	)
	return otelhttp.NewHandler(chain(s.router), s.serviceName)
}
