// Package api is the HTTP boundary of switchyard and hosts the dynamic router.
//
// # Routes
//
// Routes are registered on a gorilla/mux router in this order, and mux matches
// in registration order:
//
//	GET /health               liveness, unrelated to plugin health
//	GET /health/plugins       per-plugin health, 503 when any probe fails
//	GET /metrics              Prometheus exposition (when metrics are enabled)
//	GET /items                {apps, count}
//	GET /list/{app}           {app, paths, count}; never initializes the plugin
//	GET /{app}/{descriptor}   one concrete route per path descriptor
//
// Descriptor names are mux templates, so "issue/{identifier}" becomes the route
// /linear/issue/{identifier} and the captured value reaches the handler as
// Request.Params["identifier"].
//
// Anything that matches no route falls through to the NotFoundHandler, which
// reports either "App '<app>' not found" or "Path '<path>' not found for app
// '<app>'". Both are 404s with app and path in the envelope.
//
// # Envelopes
//
// Success:
//
//	{"app": "linear", "path": "my-issues", "data": {...}, "timestamp": "2024-01-02T03:04:05.000Z"}
//
// Error:
//
//	{"error": "App 'ghost' not found", "statusCode": 404, "timestamp": "...", "app": "ghost"}
//
// Every failed response is written by one terminal stage that logs 5xx at error
// level with the wrapped cause and 4xx at warn level. In production mode 5xx
// messages are replaced by "Internal server error".
//
// # Usage
//
//	registry := plugins.NewRegistry(logger)
//	registry.Discover(ctx, factories...)
//	server := api.NewServer(registry, logger, api.WithMetrics(metrics), api.WithProduction(true))
//	http.ListenAndServe(":3000", server.Handler())
package api
