package api

import (
	"net/http"
	"time"

	"github.com/platinummonkey/switchyard/pkg/apperrors"
	"github.com/platinummonkey/switchyard/pkg/httputil"
	"github.com/platinummonkey/switchyard/pkg/observability"
	"github.com/platinummonkey/switchyard/pkg/plugins"
)

// ItemsResponse is the body of GET /items
type ItemsResponse struct {
	Apps  []string `json:"apps"`
	Count int      `json:"count"`
}

// PathsResponse is the body of GET /list/{app}
type PathsResponse struct {
	App   string             `json:"app"`
	Paths []plugins.PathInfo `json:"paths"`
	Count int                `json:"count"`
}

// PluginHealthResponse is the body of GET /health/plugins
type PluginHealthResponse struct {
	Status    string                          `json:"status"`
	Plugins   map[string]plugins.PluginHealth `json:"plugins"`
	Timestamp string                          `json:"timestamp"`
}

// listItems handles GET /items
func (s *Server) listItems(w http.ResponseWriter, r *http.Request) {
	names := s.registry.Names()
	httputil.WriteSuccess(w, ItemsResponse{Apps: names, Count: len(names)})
}

// listPaths handles GET /list/{app}. It never initializes the plugin.
func (s *Server) listPaths(w http.ResponseWriter, r *http.Request) {
	app, err := httputil.ParsePathString(r, "app")
	if err != nil {
		s.writeError(w, r, apperrors.BadRequest(err.Error()), "", "")
		return
	}

	paths, ok := s.registry.Paths(app)
	if !ok {
		s.writeError(w, r, apperrors.AppNotFound(app), app, "")
		return
	}

	httputil.WriteSuccess(w, PathsResponse{
		App:   app,
		Paths: plugins.DescribePaths(paths),
		Count: len(paths),
	})
}

// pluginHealth handles GET /health/plugins. Plugins that were never used are
// reported but not probed; any failing probe makes the response 503.
func (s *Server) pluginHealth(w http.ResponseWriter, r *http.Request) {
	results := s.registry.HealthChecks(r.Context())

	status := observability.StatusHealthy
	code := http.StatusOK
	for _, h := range results {
		if h.Healthy != nil && !*h.Healthy {
			status = observability.StatusUnhealthy
			code = http.StatusServiceUnavailable
			break
		}
	}

	httputil.WriteJSON(w, code, PluginHealthResponse{
		Status:    status,
		Plugins:   results,
		Timestamp: httputil.Timestamp(time.Now()),
	})
}
