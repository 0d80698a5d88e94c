package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/switchyard/pkg/apperrors"
	"github.com/platinummonkey/switchyard/pkg/contextkeys"
	"github.com/platinummonkey/switchyard/pkg/httputil"
	"github.com/platinummonkey/switchyard/pkg/observability"
)

// internalErrorMessage replaces 5xx messages in production
const internalErrorMessage = "Internal server error"

// writeError is the only writer of failed responses. app and path fill the
// envelope when the error itself carries no plugin.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, app, path string) {
	appErr := apperrors.From(err)
	status := appErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}
	if app == "" {
		app = appErr.Plugin
	}

	entry := s.requestLogger(r).WithFields(logrus.Fields{
		"status": status,
		"kind":   appErr.Kind.String(),
	})
	if app != "" {
		entry = entry.WithField("app", app)
	}
	if path != "" {
		entry = entry.WithField("app_path", path)
	}
	entry = observability.UpdateLoggerWithTraceContext(r.Context(), entry)

	message := appErr.Message
	if status >= http.StatusInternalServerError {
		if appErr.Cause != nil {
			entry = entry.WithError(appErr.Cause)
		}
		entry.Error(appErr.Message)
		if s.production {
			message = internalErrorMessage
		}
	} else {
		entry.Warn(appErr.Message)
	}

	httputil.WriteErrorResponse(w, httputil.ErrorResponse{
		Error:      message,
		StatusCode: status,
		Timestamp:  httputil.Timestamp(time.Now()),
		App:        app,
		Path:       path,
	})
}

// requestLogger returns the entry stored by the logging middleware, or one on
// the server logger when the router is served bare
func (s *Server) requestLogger(r *http.Request) *logrus.Entry {
	if entry, ok := contextkeys.GetLogger(r.Context()); ok {
		return entry
	}
	entry := logrus.NewEntry(s.logger)
	if requestID := contextkeys.GetRequestID(r.Context()); requestID != "" {
		entry = entry.WithField("request_id", requestID)
	}
	return entry
}

// notFound is the catch-all fallback. It only runs after every concrete route
// failed to match, and tells an unknown app apart from an unknown path.
func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	app, rest := splitAppPath(r.URL.Path)
	if !s.registry.Has(app) || IsReservedName(app) {
		s.writeError(w, r, apperrors.AppNotFound(app), app, rest)
		return
	}
	s.writeError(w, r, apperrors.PathNotFound(app, rest), app, rest)
}

// methodNotAllowed answers non-GET requests to known routes
func (s *Server) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	app, rest := splitAppPath(r.URL.Path)
	if !s.registry.Has(app) {
		app, rest = "", ""
	}
	w.Header().Set("Allow", http.MethodGet)
	err := apperrors.Newf(http.StatusMethodNotAllowed, "Method %s not allowed for '%s'", r.Method, r.URL.Path)
	s.writeError(w, r, err, app, rest)
}

// splitAppPath splits "/app/some/path" into "app" and "some/path"
func splitAppPath(p string) (string, string) {
	p = strings.TrimPrefix(p, "/")
	app, rest, _ := strings.Cut(p, "/")
	return app, rest
}
