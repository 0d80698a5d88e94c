// Package linear integrates the Linear issue tracker.
//
// The plugin serves two paths:
//
//	GET /linear/my-issues?limit=25&includeCompleted=true
//	GET /linear/issue/ENG-123
//
// Initialize validates the API key with a viewer query, so a bad key surfaces
// as an initialization failure on first use and is retried on the next request.
// Upstream responses are mapped onto the Issue type; raw GraphQL payloads never
// reach callers.
package linear
