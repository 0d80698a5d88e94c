// Package contextkeys defines the request-scoped values shared between the
// HTTP middleware, the router and the logger.
package contextkeys

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Key is the type for context keys to prevent collisions
type Key string

const (
	// RequestIDKey holds the request ID string.
	// Set by httputil.RequestIDMiddleware.
	RequestIDKey Key = "request_id"

	// LoggerKey holds the request-scoped *logrus.Entry.
	// Set by httputil.LoggingMiddleware.
	LoggerKey Key = "logger"
)

// WithRequestID adds request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithLogger stores a request-scoped log entry
func WithLogger(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, LoggerKey, entry)
}

// GetLogger returns the entry stored by WithLogger
func GetLogger(ctx context.Context) (*logrus.Entry, bool) {
	entry, ok := ctx.Value(LoggerKey).(*logrus.Entry)
	return entry, ok && entry != nil
}
