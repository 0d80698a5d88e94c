// Package httputil provides the JSON envelopes, query parsing helpers, and
// middleware shared by the HTTP boundary.
//
// # Envelopes
//
//	httputil.WriteSuccess(w, httputil.SuccessResponse{App: "linear", Path: "my-issues", Data: data, Timestamp: httputil.Timestamp(time.Now())})
//	httputil.WriteErrorMessage(w, http.StatusNotFound, "App 'ghost' not found")
//
// # Query Parsing
//
//	limit, err := httputil.ParseQueryInt(r.URL.Query(), "limit", 50)
//	closed, err := httputil.ParseQueryBool(r.URL.Query(), "closed", false)
//
// # Middleware
//
//	handler := httputil.Chain(
//		httputil.RequestIDMiddleware,
//		httputil.LoggingMiddleware(logger),
//		httputil.RecoveryMiddleware(logger),
//		httputil.MaxBytesMiddleware(1<<20),
//	)(router)
package httputil
