package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/switchyard/pkg/config"
	"github.com/platinummonkey/switchyard/pkg/plugins"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "switchyard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func clearSwitchyardEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, "SWITCHYARD_") {
			t.Setenv(key, "")
			require.NoError(t, os.Unsetenv(key))
		}
	}
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand("test", "abc123", "today")
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestPluginFactories(t *testing.T) {
	logger := logrus.New()

	tests := []struct {
		name   string
		linear bool
		github bool
		want   []string
	}{
		{name: "none", want: nil},
		{name: "linear only", linear: true, want: []string{"linear"}},
		{name: "github only", github: true, want: []string{"github"}},
		{name: "both", linear: true, github: true, want: []string{"linear", "github"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Plugins.Linear.Enabled = tt.linear
			cfg.Plugins.GitHub.Enabled = tt.github

			var names []string
			for _, f := range pluginFactories(cfg, logger) {
				names = append(names, f.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestPluginsCommand_JSON(t *testing.T) {
	clearSwitchyardEnv(t)
	path := writeConfig(t, `
plugins:
  linear:
    enabled: true
  github:
    enabled: true
`)

	out, err := runCommand(t, "--config", path, "plugins", "--format", "json")
	require.NoError(t, err)

	var manifest plugins.Manifest
	require.NoError(t, json.Unmarshal([]byte(out), &manifest), out)
	assert.Equal(t, 2, manifest.Count)
	require.Len(t, manifest.Plugins, 2)
	assert.Equal(t, "github", manifest.Plugins[0].Name)
	assert.Equal(t, "linear", manifest.Plugins[1].Name)
	assert.False(t, manifest.Plugins[1].Initialized, "listing never initializes plugins")

	var linearPaths []string
	for _, p := range manifest.Plugins[1].Paths {
		linearPaths = append(linearPaths, p.Name)
	}
	assert.Equal(t, []string{"my-issues", "issue/{identifier}"}, linearPaths)
}

func TestPluginsCommand_YAMLDefault(t *testing.T) {
	clearSwitchyardEnv(t)
	path := writeConfig(t, "plugins:\n  linear:\n    enabled: true\n")

	out, err := runCommand(t, "-c", path, "plugins")
	require.NoError(t, err)

	assert.Contains(t, out, "name: linear")
	assert.Contains(t, out, "count: 1")
	assert.NotContains(t, out, "name: github")
}

func TestPluginsCommand_Errors(t *testing.T) {
	clearSwitchyardEnv(t)

	_, err := runCommand(t, "plugins", "--format", "xml")
	assert.ErrorContains(t, err, "unknown manifest format")

	_, err = runCommand(t, "--config", writeConfig(t, "server:\n  port: 0\n"), "plugins")
	assert.ErrorContains(t, err, "server port")
}

func TestRootCommand_Version(t *testing.T) {
	out, err := runCommand(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "test (commit: abc123, built: today)")
}
