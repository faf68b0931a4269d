// Package logger builds slog loggers and provides attribute helpers used
// across the SDK.
//
// Create a logger for the environment:
//
//	log := logger.New(logger.WithDevelopment("nearby"))
//	log = logger.New(logger.WithProduction("nearby"), logger.WithOutput(os.Stderr))
//
// Attribute helpers keep keys consistent between components:
//
//	log.Info("request completed",
//		logger.Component("gateway"),
//		logger.Method(http.MethodGet),
//		logger.Path("/profile"),
//		logger.StatusCode(200),
//		logger.Latency(time.Since(start)),
//	)
//
// Error returns an empty attribute for nil errors so it is safe to pass
// unconditionally. Context extractors add request-scoped attributes to every
// *Context call:
//
//	log := logger.New(logger.WithContextExtractors(func(ctx context.Context) (slog.Attr, bool) {
//		id, ok := gateway.RequestIDFromContext(ctx)
//		return logger.RequestID(id), ok
//	}))
//
// Components in this module accept a *slog.Logger through a WithLogger option
// and fall back to Discard.
package logger
