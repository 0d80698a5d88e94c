// Package apperrors defines the error taxonomy shared by the plugin registry,
// the router, and the integration adapters.
//
// # Overview
//
// Every failure that reaches the HTTP boundary is expressed as an *Error carrying a
// status code and a human-readable message. Three kinds exist:
//
//   - KindApplication: generic request-handling failures (bad route, bad parameters)
//   - KindPlugin: an application error tagged with the originating plugin name
//   - KindAPI: a plugin's upstream dependency failed; defaults to 502 and always
//     wraps the lower-level cause
//
// # Usage
//
//	return nil, apperrors.NewAPI("linear", "Failed to fetch issues from Linear", err)
//
//	var appErr *apperrors.Error
//	if errors.As(err, &appErr) && appErr.Kind == apperrors.KindPlugin {
//		log.Printf("plugin %s failed: %v", appErr.Plugin, appErr)
//	}
//
// Plain errors are converted with From, which yields a 500 application error.
package apperrors
