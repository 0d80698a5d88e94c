package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/switchyard/pkg/observability"
)

// reservedNames are first path segments owned by the server itself. A plugin
// with one of these names would be shadowed, so it is not routed at all.
var reservedNames = map[string]bool{
	"items":   true,
	"list":    true,
	"health":  true,
	"metrics": true,
}

// IsReservedName reports whether name collides with a built-in route prefix
func IsReservedName(name string) bool {
	return reservedNames[name]
}

// setupRoutes registers built-in routes first, then one concrete route per
// plugin path descriptor. gorilla/mux matches in registration order, so the
// first route registered for a pattern wins and the fallback runs last.
func (s *Server) setupRoutes() {
	s.router.Use(observability.HTTPMetricsMiddleware(s.metrics))

	s.router.HandleFunc("/health", s.health.Liveness).Methods(http.MethodGet)
	s.router.HandleFunc("/health/plugins", s.pluginHealth).Methods(http.MethodGet)
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	s.router.HandleFunc("/items", s.listItems).Methods(http.MethodGet)
	s.router.HandleFunc("/list/{app}", s.listPaths).Methods(http.MethodGet)

	routed := s.registerPluginRoutes()

	// Router.Use only wraps matched routes; unmatched requests are measured here.
	instrument := observability.HTTPMetricsMiddleware(s.metrics)
	s.router.NotFoundHandler = instrument(http.HandlerFunc(s.notFound))
	s.router.MethodNotAllowedHandler = instrument(http.HandlerFunc(s.methodNotAllowed))

	s.logger.WithFields(logrus.Fields{
		"plugins": len(s.registry.Names()),
		"routes":  routed,
	}).Info("Route table built")
}

// registerPluginRoutes adds /{plugin}/{descriptor} for every descriptor, in
// sorted plugin order and declared descriptor order. It returns the number of
// routes added.
func (s *Server) registerPluginRoutes() int {
	seen := make(map[string]string)
	count := 0

	for _, name := range s.registry.Names() {
		if IsReservedName(name) {
			s.logger.WithField("plugin", name).Warn("Plugin name collides with a built-in route, not routing it")
			continue
		}

		paths, _ := s.registry.Paths(name)
		for _, desc := range paths {
			if desc.Handler == nil {
				s.logger.WithFields(logrus.Fields{
					"plugin": name,
					"path":   desc.Name,
				}).Warn("Path has no handler, not routing it")
				continue
			}

			pattern := RoutePattern(name, desc.Name)
			if owner, dup := seen[pattern]; dup {
				s.logger.WithFields(logrus.Fields{
					"plugin":  name,
					"pattern": pattern,
					"owner":   owner,
				}).Warn("Duplicate route pattern, the first registration wins")
				continue
			}
			seen[pattern] = name

			s.router.Handle(pattern, s.executeHandler(name, desc)).
				Methods(http.MethodGet).
				Name(name + ":" + desc.Name)
			count++
		}
	}
	return count
}

// RoutePattern builds the mux template for a plugin path descriptor
func RoutePattern(plugin, path string) string {
	return "/" + plugin + "/" + strings.Trim(path, "/")
}

// Routes lists the registered route templates in match order
func (s *Server) Routes() []string {
	var templates []string
	_ = s.router.Walk(func(route *mux.Route, router *mux.Router, ancestors []*mux.Route) error {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			templates = append(templates, tmpl)
		}
		return nil
	})
	return templates
}
