// Package logger builds the zap logger used across the service.
//
// Level accepts any zap level name (debug, info, warn, error). Debug selects the
// development preset, other levels the production one. Format is "console" or "json".
//
// WithRayID tags a logger with the ray id stored by the rayid middleware so that
// every line of one request can be correlated:
//
//	l := logger.WithRayID(log, c)
//	l.Error("Handler failed", zap.Error(err))
package logger
