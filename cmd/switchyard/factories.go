package main

import (
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/switchyard/pkg/config"
	"github.com/platinummonkey/switchyard/pkg/integrations/github"
	"github.com/platinummonkey/switchyard/pkg/integrations/linear"
	"github.com/platinummonkey/switchyard/pkg/plugins"
)

// pluginFactories returns a factory for every integration enabled in cfg
func pluginFactories(cfg *config.Config, logger logrus.FieldLogger) []plugins.Factory {
	var factories []plugins.Factory

	if l := cfg.Plugins.Linear; l.Enabled {
		factories = append(factories, linear.Factory(linear.Config{
			APIKey:  l.APIKey,
			APIURL:  l.APIURL,
			Timeout: l.Timeout,
		}, logger))
	}

	if g := cfg.Plugins.GitHub; g.Enabled {
		factories = append(factories, github.Factory(github.Config{
			Token:          g.Token,
			AppID:          g.AppID,
			InstallationID: g.InstallationID,
			PrivateKeyPath: g.PrivateKeyPath,
			BaseURL:        g.BaseURL,
			Timeout:        g.Timeout,
		}, logger))
	}

	return factories
}
