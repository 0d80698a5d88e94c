package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
}

func newRootCommand(version, commit, date string) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "switchyard",
		Short: "Switchyard - pluggable HTTP proxy for productivity tools",
		Long: `Switchyard exposes third-party tools such as Linear and GitHub through a
uniform REST surface. Each integration is a plugin that declares its own
routes and is initialized the first time one of them is requested.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: false,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"path to a YAML config file (defaults to $SWITCHYARD_CONFIG_FILE)")

	rootCmd.AddCommand(newServeCommand(opts, version))
	rootCmd.AddCommand(newPluginsCommand(opts))

	return rootCmd
}
