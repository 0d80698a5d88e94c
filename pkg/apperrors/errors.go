package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an Error within the taxonomy
type Kind int

const (
	// KindApplication is a generic request-handling failure
	KindApplication Kind = iota
	// KindPlugin is a failure attributed to a specific plugin
	KindPlugin
	// KindAPI is a failure returned by a plugin's upstream dependency
	KindAPI
)

func (k Kind) String() string {
	switch k {
	case KindPlugin:
		return "plugin"
	case KindAPI:
		return "api"
	default:
		return "application"
	}
}

// Error is the single error value forwarded to the terminal error stage.
// Message is safe to show to callers; Cause is for diagnostics only.
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int
	Plugin     string
	Cause      error
}

// Error implements the error interface. It includes the plugin and the wrapped
// cause, so it must not be written to clients verbatim.
func (e *Error) Error() string {
	msg := e.Message
	if e.Plugin != "" {
		msg = fmt.Sprintf("plugin %q: %s", e.Plugin, msg)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying error for error chain support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an application error
func New(statusCode int, message string) *Error {
	return &Error{
		Kind:       KindApplication,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Newf creates an application error with a formatted message
func Newf(statusCode int, format string, args ...interface{}) *Error {
	return New(statusCode, fmt.Sprintf(format, args...))
}

// NewPlugin creates an error tagged with the plugin it originated from
func NewPlugin(plugin string, statusCode int, message string) *Error {
	return &Error{
		Kind:       KindPlugin,
		Message:    message,
		StatusCode: statusCode,
		Plugin:     plugin,
	}
}

// NewAPI creates an upstream failure with the default 502 status
func NewAPI(plugin, message string, cause error) *Error {
	return NewAPIWithStatus(plugin, http.StatusBadGateway, message, cause)
}

// NewAPIWithStatus creates an upstream failure with an explicit status
func NewAPIWithStatus(plugin string, statusCode int, message string, cause error) *Error {
	return &Error{
		Kind:       KindAPI,
		Message:    message,
		StatusCode: statusCode,
		Plugin:     plugin,
		Cause:      cause,
	}
}

// BadRequest creates a 400 application error
func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, message)
}

// NotFound creates a 404 application error
func NotFound(message string) *Error {
	return New(http.StatusNotFound, message)
}

// Internal creates a 500 application error wrapping cause
func Internal(message string, cause error) *Error {
	e := New(http.StatusInternalServerError, message)
	e.Cause = cause
	return e
}

// AppNotFound reports a route whose first segment names no registered plugin
func AppNotFound(app string) *Error {
	return Newf(http.StatusNotFound, "App '%s' not found", app)
}

// PathNotFound reports a route under a registered plugin that matches none of its paths
func PathNotFound(app, path string) *Error {
	return NewPlugin(app, http.StatusNotFound, fmt.Sprintf("Path '%s' not found for app '%s'", path, app))
}

// From converts any error into an *Error. Errors that already carry an *Error in
// their chain are returned as-is; anything else becomes a 500 application error.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err.Error(), err)
}

// WithPlugin attributes err to plugin. Untagged application errors are promoted to
// plugin errors with their status preserved; plain errors become 500 plugin errors.
// Errors already tagged are returned unchanged.
func WithPlugin(err error, plugin string) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if !errors.As(err, &appErr) {
		return &Error{
			Kind:       KindPlugin,
			Message:    err.Error(),
			StatusCode: http.StatusInternalServerError,
			Plugin:     plugin,
			Cause:      err,
		}
	}
	if appErr.Plugin != "" {
		return appErr
	}
	tagged := *appErr
	tagged.Plugin = plugin
	if tagged.Kind == KindApplication {
		tagged.Kind = KindPlugin
	}
	return &tagged
}

// StatusCode returns the HTTP status carried by err, or 500 when err is not an *Error
func StatusCode(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.StatusCode != 0 {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
