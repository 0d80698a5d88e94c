package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/platinummonkey/switchyard/pkg/apperrors"
	"github.com/platinummonkey/switchyard/pkg/httputil"
	"github.com/platinummonkey/switchyard/pkg/observability"
	"github.com/platinummonkey/switchyard/pkg/plugins"
)

// executeHandler binds one path descriptor to HTTP. The descriptor's handler
// never sees the request or the response writer.
func (s *Server) executeHandler(app string, desc plugins.PathDescriptor) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx, span := observability.Tracer().Start(r.Context(), "plugins.execute",
			trace.WithAttributes(
				attribute.String("plugin.name", app),
				attribute.String("plugin.path", desc.Name),
			),
		)
		defer span.End()

		data, err := s.execute(ctx, app, desc, r)
		if err != nil {
			appErr := apperrors.WithPlugin(err, app)
			span.RecordError(appErr)
			span.SetStatus(codes.Error, appErr.Message)
			s.metrics.RecordPluginHandler(app, desc.Name, appErr.StatusCode, time.Since(start))
			s.writeError(w, r, appErr, app, desc.Name)
			return
		}

		s.metrics.RecordPluginHandler(app, desc.Name, http.StatusOK, time.Since(start))
		httputil.WriteSuccess(w, httputil.SuccessResponse{
			App:       app,
			Path:      desc.Name,
			Data:      data,
			Timestamp: httputil.Timestamp(time.Now()),
		})
	})
}

// execute runs resolve, validate and handle in that order
func (s *Server) execute(ctx context.Context, app string, desc plugins.PathDescriptor, r *http.Request) (any, error) {
	if _, ok, err := s.registry.Resolve(ctx, app); err != nil {
		e := apperrors.NewPlugin(app, http.StatusInternalServerError,
			fmt.Sprintf("Failed to initialize plugin '%s'", app))
		e.Cause = err
		return nil, e
	} else if !ok {
		return nil, apperrors.AppNotFound(app)
	}

	rawQuery := r.URL.Query()
	query, err := desc.Schema.Validate(rawQuery)
	if err != nil {
		var verr *plugins.ValidationError
		if errors.As(err, &verr) {
			e := apperrors.NewPlugin(app, http.StatusBadRequest, verr.Error())
			e.Cause = err
			return nil, e
		}
		return nil, err
	}

	req := &plugins.Request{
		Plugin:   app,
		Path:     desc.Name,
		Params:   httputil.GetPathVars(r),
		Query:    query,
		RawQuery: rawQuery,
	}
	return callHandler(ctx, desc.Handler, req)
}

func callHandler(ctx context.Context, handler plugins.HandlerFunc, req *plugins.Request) (data any, err error) {
	defer func() {
		if perr := observability.MustRecover(recover()); perr != nil {
			data, err = nil, perr
		}
	}()
	return handler(ctx, req)
}
