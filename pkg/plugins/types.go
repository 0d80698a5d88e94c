package plugins

import (
	"context"
	"net/url"
)

// Plugin is the contract every integration implements. Instances are constructed
// once at startup; Initialize is invoked lazily by the Registry on first use.
type Plugin interface {
	// Name is unique within a registry and is the first routing segment
	Name() string
	// Version is informational only
	Version() string
	Description() string
	// Paths lists the routable capabilities in declaration order
	Paths() []PathDescriptor
	// Initialize creates the upstream client. It may perform network calls.
	Initialize(ctx context.Context) error
}

// HealthChecker is implemented by plugins that can report upstream health
type HealthChecker interface {
	HealthCheck(ctx context.Context) (bool, error)
}

// HandlerFunc executes one path. It receives validated input and returns the
// value placed in the response envelope's data field.
type HandlerFunc func(ctx context.Context, req *Request) (any, error)

// PathDescriptor is one routable unit of a plugin.
//
// Name is a gorilla/mux route template relative to the plugin, for example
// "my-issues" or "issue/{identifier}". Placeholders may carry a pattern,
// as in "issue/{number:[0-9]+}".
type PathDescriptor struct {
	Name        string
	Description string
	Handler     HandlerFunc
	Schema      *Schema
}

// Request is the transport-independent input to a HandlerFunc
type Request struct {
	// Plugin and Path identify the descriptor being executed
	Plugin string
	Path   string
	// Params holds the values captured by the route template placeholders
	Params map[string]string
	// Query holds typed query values produced by the descriptor's Schema.
	// Without a schema it holds every raw query value as a string.
	Query map[string]any
	// RawQuery is the unvalidated query string
	RawQuery url.Values
}

// Param returns a captured path parameter
func (r *Request) Param(name string) string {
	return r.Params[name]
}

// String returns a string query value, or "" when absent
func (r *Request) String(name string) string {
	v, _ := r.Query[name].(string)
	return v
}

// Int returns an integer query value and whether it was present
func (r *Request) Int(name string) (int, bool) {
	v, ok := r.Query[name].(int)
	return v, ok
}

// Bool returns a boolean query value, or false when absent
func (r *Request) Bool(name string) bool {
	v, _ := r.Query[name].(bool)
	return v
}

// PluginInfo is the introspection view of a registered plugin
type PluginInfo struct {
	Name        string     `json:"name" yaml:"name"`
	Version     string     `json:"version" yaml:"version"`
	Description string     `json:"description" yaml:"description"`
	Initialized bool       `json:"initialized" yaml:"initialized"`
	Paths       []PathInfo `json:"paths" yaml:"paths"`
}

// PathInfo is the introspection view of a path descriptor
type PathInfo struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// DescribePaths strips handlers from descriptors for introspection
func DescribePaths(paths []PathDescriptor) []PathInfo {
	infos := make([]PathInfo, 0, len(paths))
	for _, p := range paths {
		infos = append(infos, PathInfo{Name: p.Name, Description: p.Description})
	}
	return infos
}

// PluginHealth reports a plugin's initialization and upstream health
type PluginHealth struct {
	Initialized bool   `json:"initialized"`
	Healthy     *bool  `json:"healthy,omitempty"`
	Error       string `json:"error,omitempty"`
}
