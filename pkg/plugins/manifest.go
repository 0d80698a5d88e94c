package plugins

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	semverRegex     = regexp.MustCompile(`^v?(\d+)\.(\d+)\.(\d+)(-[a-zA-Z0-9.-]+)?(\+[a-zA-Z0-9.-]+)?$`)
	pluginNameRegex = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)
)

// ManifestFormat selects the encoding of a Manifest
type ManifestFormat string

const (
	ManifestYAML ManifestFormat = "yaml"
	ManifestJSON ManifestFormat = "json"
)

// Manifest is a serializable snapshot of the plugins held by a registry
type Manifest struct {
	Plugins []PluginInfo `json:"plugins" yaml:"plugins"`
	Count   int          `json:"count" yaml:"count"`
}

// Manifest captures the current registry contents without initializing anything
func (r *Registry) Manifest() *Manifest {
	infos := r.Plugins()
	return &Manifest{Plugins: infos, Count: len(infos)}
}

// Encode writes the manifest to w in the requested format
func (m *Manifest) Encode(w io.Writer, format ManifestFormat) error {
	switch format {
	case ManifestJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(m); err != nil {
			return fmt.Errorf("failed to encode manifest: %w", err)
		}
		return nil
	case ManifestYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return fmt.Errorf("failed to encode manifest: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported manifest format: %s", format)
	}
}

// ParseManifestFormat parses a format name, case-insensitively
func ParseManifestFormat(s string) (ManifestFormat, error) {
	switch ManifestFormat(strings.ToLower(s)) {
	case ManifestYAML, "yml", "":
		return ManifestYAML, nil
	case ManifestJSON:
		return ManifestJSON, nil
	}
	return "", fmt.Errorf("unknown manifest format %q (expected yaml or json)", s)
}

// LintIssue is one convention a plugin does not follow
type LintIssue struct {
	Field   string
	Message string
}

func (i LintIssue) String() string {
	return i.Field + ": " + i.Message
}

// LintPlugin checks a plugin against the naming conventions the router relies
// on. Issues are advisory; the registry still accepts the plugin.
func LintPlugin(plugin Plugin) []LintIssue {
	var issues []LintIssue

	if name := plugin.Name(); name != "" && !pluginNameRegex.MatchString(name) {
		issues = append(issues, LintIssue{
			Field:   "name",
			Message: fmt.Sprintf("%q should be lowercase letters, digits and dashes", name),
		})
	}

	if v := plugin.Version(); v == "" {
		issues = append(issues, LintIssue{Field: "version", Message: "Version is required"})
	} else if !isValidSemver(v) {
		issues = append(issues, LintIssue{
			Field:   "version",
			Message: fmt.Sprintf("Invalid semver format: %s", v),
		})
	}

	seen := make(map[string]bool)
	for i, p := range plugin.Paths() {
		field := fmt.Sprintf("paths[%d]", i)
		switch {
		case strings.TrimSpace(p.Name) == "":
			issues = append(issues, LintIssue{Field: field, Message: "Path name is required"})
		case strings.HasPrefix(p.Name, "/") || strings.HasSuffix(p.Name, "/"):
			issues = append(issues, LintIssue{
				Field:   field,
				Message: fmt.Sprintf("%q must not start or end with a slash", p.Name),
			})
		case seen[p.Name]:
			issues = append(issues, LintIssue{
				Field:   field,
				Message: fmt.Sprintf("%q is declared more than once; only the first is reachable", p.Name),
			})
		}
		if p.Handler == nil {
			issues = append(issues, LintIssue{Field: field, Message: "Handler is required"})
		}
		seen[p.Name] = true
	}

	return issues
}

// isValidSemver checks if a version string follows semantic versioning
func isValidSemver(version string) bool {
	return semverRegex.MatchString(version)
}
