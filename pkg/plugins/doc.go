// Package plugins defines the plugin contract and the registry that owns every
// plugin's lifecycle.
//
// # Contract
//
// A Plugin declares its name, version, description, and an ordered list of
// PathDescriptors. Each descriptor names a route template relative to the
// plugin ("my-issues", "issue/{identifier}"), a pure HandlerFunc, and an
// optional query Schema. Plugins that can probe their upstream also implement
// HealthChecker.
//
// # Registry
//
// Plugins are registered once at startup from an explicit factory list:
//
//	registry := plugins.NewRegistry(logger, plugins.WithMetrics(metrics))
//	registry.Discover(ctx,
//		plugins.Factory{Name: "linear", New: func() (plugins.Plugin, error) { return linear.New(cfg) }},
//	)
//
// Initialization is lazy. Resolve runs Initialize on first use, shares one call
// among concurrent resolvers, and only marks the plugin initialized on success:
//
//	plugin, ok, err := registry.Resolve(ctx, "linear")
//
// Paths and Names never initialize anything and are safe for introspection.
//
// # Query Schemas
//
//	plugins.NewSchema(map[string]plugins.Param{
//		"limit": plugins.Int("Maximum issues").WithRange(1, 100).WithDefault(50),
//		"state": plugins.Enum("Issue state", "open", "closed", "all"),
//	})
package plugins
