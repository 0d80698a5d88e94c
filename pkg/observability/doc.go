// Package observability provides logging, Prometheus metrics, OpenTelemetry tracing,
// the liveness probe, and graceful shutdown.
//
// # Logging
//
// Loggers are logrus loggers; JSON output is used in production:
//
//	logger := observability.NewLogger(logrus.InfoLevel, observability.FormatJSON, os.Stdout)
//	logger.WithField("app", "linear").Info("plugin initialized")
//
// Request-scoped entries travel in the context:
//
//	observability.FromContext(r.Context()).Warn("bad query parameter")
//
// # Prometheus Metrics
//
//	metrics := observability.NewMetrics(prometheus.NewRegistry())
//	router.Use(observability.HTTPMetricsMiddleware(metrics))
//	router.Handle("/metrics", metrics.Handler())
//
// Plugin metrics are recorded by the registry and router:
//
//	metrics.RecordPluginInit("linear", err, time.Since(start))
//
// # OpenTelemetry
//
//	providers, err := observability.InitOTel(ctx, cfg, logger)
//	defer providers.Shutdown(ctx)
//
// # Shutdown
//
//	sm := observability.NewShutdownManager(logger, server, 30*time.Second)
//	sm.RegisterShutdownFunc("otel", providers.Shutdown)
//	sm.WaitForShutdown(ctx)
package observability
