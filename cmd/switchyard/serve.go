package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/platinummonkey/switchyard/pkg/api"
	"github.com/platinummonkey/switchyard/pkg/config"
	"github.com/platinummonkey/switchyard/pkg/observability"
	"github.com/platinummonkey/switchyard/pkg/plugins"
)

func newServeCommand(opts *rootOptions, version string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.ResolvePath(opts.configPath)
			cfg, err := config.LoadConfig(path)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, path, version)
		},
	}
}

// runServe wires the process together and blocks until shutdown. When
// configPath is set, edits to the file change the log level without a restart;
// other settings are read once.
func runServe(ctx context.Context, cfg *config.Config, configPath, version string) error {
	logger := observability.NewLogger(
		observability.ParseLogLevel(cfg.Logging.Level),
		observability.ParseLogFormat(cfg.LogFormat()),
		os.Stdout,
	)

	obs := cfg.Observability
	serviceVersion := obs.OTelServiceVersion
	if serviceVersion == "" {
		serviceVersion = version
	}
	providers, err := observability.InitOTel(ctx, observability.OTelConfig{
		Enabled:        obs.OTelEnabled,
		Endpoint:       obs.OTelEndpoint,
		ServiceName:    obs.OTelServiceName,
		ServiceVersion: serviceVersion,
		Environment:    string(cfg.Environment),
		Insecure:       obs.OTelInsecure,
		SampleRatio:    obs.OTelSampleRatio,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	var registryOpts []plugins.RegistryOption
	serverOpts := []api.Option{
		api.WithProduction(cfg.IsProduction()),
		api.WithMaxBodyBytes(cfg.Server.MaxBodyBytes),
		api.WithHealthChecker(observability.NewHealthChecker(version)),
	}
	if obs.OTelServiceName != "" {
		serverOpts = append(serverOpts, api.WithServiceName(obs.OTelServiceName))
	}
	if obs.MetricsEnabled {
		metrics := observability.NewMetrics(nil)
		registryOpts = append(registryOpts, plugins.WithMetrics(metrics))
		serverOpts = append(serverOpts, api.WithMetrics(metrics))
	}

	registry := plugins.NewRegistry(logger, registryOpts...)
	registry.Discover(ctx, pluginFactories(cfg, logger)...)

	server := api.NewServer(registry, logger, serverOpts...)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      server.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := observability.NewShutdownManager(logger, httpServer, cfg.Server.ShutdownTimeout)
	if providers != nil {
		shutdown.RegisterShutdownFunc("opentelemetry", providers.Shutdown)
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"address":     httpServer.Addr,
			"environment": cfg.Environment,
			"plugins":     registry.Names(),
		}).Info("Starting switchyard")
		serveErr <- httpServer.ListenAndServe()
	}()

	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if configPath != "" {
		go func() {
			defer observability.RecoverPanic(logger, "config watcher")
			err := config.Watch(waitCtx, configPath, logger, func(updated *config.Config) {
				level := observability.ParseLogLevel(updated.Logging.Level)
				if level != logger.GetLevel() {
					logger.WithField("level", level).Info("Log level changed")
					logger.SetLevel(level)
				}
			})
			if err != nil {
				logger.WithError(err).Warn("Config watcher stopped")
			}
		}()
	}

	shutdownErr := make(chan error, 1)
	go func() {
		shutdownErr <- shutdown.WaitForShutdown(waitCtx)
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			cancel()
			<-shutdownErr
			return fmt.Errorf("server failed: %w", err)
		}
		return <-shutdownErr
	case err := <-shutdownErr:
		if err != nil {
			return err
		}
		logger.Info("Server stopped")
		return nil
	}
}
