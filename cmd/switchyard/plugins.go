package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/platinummonkey/switchyard/pkg/config"
	"github.com/platinummonkey/switchyard/pkg/observability"
	"github.com/platinummonkey/switchyard/pkg/plugins"
)

func newPluginsCommand(opts *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "plugins",
		Short: "List configured plugins and their paths",
		Long: `List every enabled plugin with its version and the paths it serves.
Plugins are constructed but not initialized, so no upstream credentials
are needed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manifestFormat, err := plugins.ParseManifestFormat(format)
			if err != nil {
				return err
			}
			cfg, err := config.LoadConfig(opts.configPath)
			if err != nil {
				return err
			}

			logger := observability.NewLogger(logrus.WarnLevel, observability.FormatText, cmd.ErrOrStderr())
			return listPlugins(cmd, cfg, logger, manifestFormat)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "output format (yaml or json)")
	return cmd
}

func listPlugins(cmd *cobra.Command, cfg *config.Config, logger *logrus.Logger, format plugins.ManifestFormat) error {
	registry := plugins.NewRegistry(logger)
	registry.Discover(cmd.Context(), pluginFactories(cfg, logger)...)
	return registry.Manifest().Encode(cmd.OutOrStdout(), format)
}
