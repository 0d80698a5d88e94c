package plugins

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/platinummonkey/switchyard/pkg/async"
	"github.com/platinummonkey/switchyard/pkg/observability"
)

const (
	healthCheckTimeout        = 5 * time.Second
	maxConcurrentHealthChecks = 8
)

// Registry is the catalog of plugins and their initialization state.
//
// A plugin is in the initialized set if and only if its Initialize returned nil.
// Concurrent first resolutions of the same plugin share one Initialize call.
type Registry struct {
	mu          sync.RWMutex
	plugins     map[string]Plugin
	initialized map[string]bool
	initGroup   singleflight.Group

	logger  logrus.FieldLogger
	metrics *observability.Metrics
}

// RegistryOption configures a Registry
type RegistryOption func(*Registry)

// WithMetrics records registration and initialization metrics
func WithMetrics(metrics *observability.Metrics) RegistryOption {
	return func(r *Registry) {
		r.metrics = metrics
	}
}

// NewRegistry creates an empty registry
func NewRegistry(logger logrus.FieldLogger, opts ...RegistryOption) *Registry {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	r := &Registry{
		plugins:     make(map[string]Plugin),
		initialized: make(map[string]bool),
		logger:      logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a plugin. Registration happens at startup, so rejected plugins
// (nil, unnamed, or a name already taken) are logged rather than returned as
// errors. The first registration of a name wins.
func (r *Registry) Register(plugin Plugin) {
	if plugin == nil {
		r.logger.Warn("Ignoring nil plugin registration")
		return
	}

	name := plugin.Name()
	if name == "" {
		r.logger.WithField("version", plugin.Version()).Warn("Ignoring plugin with empty name")
		return
	}

	r.mu.Lock()
	if _, exists := r.plugins[name]; exists {
		r.mu.Unlock()
		r.logger.WithField("plugin", name).Warn("Plugin already registered, ignoring duplicate")
		return
	}
	r.plugins[name] = plugin
	count := len(r.plugins)
	r.mu.Unlock()

	r.metrics.SetPluginsRegistered(count)
	for _, issue := range LintPlugin(plugin) {
		r.logger.WithFields(logrus.Fields{
			"plugin": name,
			"field":  issue.Field,
		}).Warn(issue.Message)
	}
	r.logger.WithFields(logrus.Fields{
		"plugin":  name,
		"version": plugin.Version(),
		"paths":   len(plugin.Paths()),
	}).Info("Registered plugin")
}

// Resolve looks up a plugin and initializes it on first use.
//
// It returns ok=false with a nil error when no plugin has that name. When
// initialization fails the error is returned and the plugin stays uninitialized,
// so the next call retries.
func (r *Registry) Resolve(ctx context.Context, name string) (Plugin, bool, error) {
	r.mu.RLock()
	plugin, ok := r.plugins[name]
	initialized := r.initialized[name]
	r.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if initialized {
		return plugin, true, nil
	}

	// The flight outlives the request that started it; a cancelled caller must
	// not fail the other waiters.
	initCtx := context.WithoutCancel(ctx)
	_, err, _ := r.initGroup.Do(name, func() (interface{}, error) {
		if r.IsInitialized(name) {
			return nil, nil
		}
		return nil, r.initialize(initCtx, plugin)
	})
	if err != nil {
		return nil, true, err
	}
	return plugin, true, nil
}

func (r *Registry) initialize(ctx context.Context, plugin Plugin) (err error) {
	name := plugin.Name()

	ctx, span := observability.Tracer().Start(ctx, "plugins.initialize",
		trace.WithAttributes(
			attribute.String("plugin.name", name),
			attribute.String("plugin.version", plugin.Version()),
		),
	)
	defer span.End()

	start := time.Now()
	defer func() {
		if perr := observability.MustRecover(recover()); perr != nil {
			err = perr
		}
		r.metrics.RecordPluginInit(name, err, time.Since(start))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "initialization failed")
		}
	}()

	if err := plugin.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize plugin %s: %w", name, err)
	}

	r.mu.Lock()
	r.initialized[name] = true
	r.mu.Unlock()

	r.metrics.IncPluginsInitialized()
	r.logger.WithFields(logrus.Fields{
		"plugin":      name,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Initialized plugin")
	return nil
}

// Get returns a plugin without initializing it
func (r *Registry) Get(name string) (Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	plugin, ok := r.plugins[name]
	return plugin, ok
}

// Has checks if a plugin is registered
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// IsInitialized reports whether the plugin's Initialize has completed successfully
func (r *Registry) IsInitialized(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.initialized[name]
}

// Names returns all registered plugin names in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.plugins))
	for name := range r.plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered plugins
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.plugins)
}

// Paths returns a plugin's declared paths without initializing it
func (r *Registry) Paths(name string) ([]PathDescriptor, bool) {
	plugin, ok := r.Get(name)
	if !ok {
		return nil, false
	}

	declared := plugin.Paths()
	paths := make([]PathDescriptor, len(declared))
	copy(paths, declared)
	return paths, true
}

// Plugins returns introspection info for every plugin, sorted by name
func (r *Registry) Plugins() []PluginInfo {
	names := r.Names()
	infos := make([]PluginInfo, 0, len(names))
	for _, name := range names {
		plugin, ok := r.Get(name)
		if !ok {
			continue
		}
		infos = append(infos, PluginInfo{
			Name:        name,
			Version:     plugin.Version(),
			Description: plugin.Description(),
			Initialized: r.IsInitialized(name),
			Paths:       DescribePaths(plugin.Paths()),
		})
	}
	return infos
}

// HealthChecks reports the health of every plugin. Only initialized plugins that
// implement HealthChecker are probed; nothing is initialized as a side effect.
// Probes run concurrently, each bounded by healthCheckTimeout.
func (r *Registry) HealthChecks(ctx context.Context) map[string]PluginHealth {
	type probe struct {
		name    string
		checker HealthChecker
	}

	results := make(map[string]PluginHealth)
	var probes []probe
	for _, name := range r.Names() {
		health := PluginHealth{Initialized: r.IsInitialized(name)}
		plugin, _ := r.Get(name)
		if checker, ok := plugin.(HealthChecker); ok && health.Initialized {
			probes = append(probes, probe{name: name, checker: checker})
		}
		results[name] = health
	}

	outcomes := async.Map(ctx, probes, maxConcurrentHealthChecks, healthCheckTimeout,
		func(ctx context.Context, p probe) (bool, error) {
			return p.checker.HealthCheck(ctx)
		})
	for i, outcome := range outcomes {
		health := results[probes[i].name]
		healthy := outcome.Value && outcome.Err == nil
		health.Healthy = &healthy
		if outcome.Err != nil {
			health.Error = outcome.Err.Error()
		}
		results[probes[i].name] = health
	}
	return results
}
