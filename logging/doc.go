// Package logging provides a minimal logging interface and adapters for the store.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that the registry and action layer use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - LMSLogger over log/slog with component, actor and context attributes
//   - LogAction and ErrorWithStack helpers that work on any Logger
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// When the action layer is given an *LMSLogger it attaches the acting user and
// the operation's correlation id through WithActor and WithContext; other
// loggers receive the same values as key/value args.
//
// Usage:
//
//	logger := logging.FromConfig(cfg.Logging, os.Stderr)
//	svc := action.New(reg, func(o *action.Options) { o.Logger = logger })
package logging
