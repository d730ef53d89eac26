/*
Package log provides structured logging for the roaming core using zerolog.

The log package wraps the zerolog library to provide JSON-structured logging
with component-specific loggers, configurable log levels, and helper
functions for common logging patterns. All logs include timestamps and
support filtering by severity for production debugging.

# Core Components

Global Logger:
  - Package-level zerolog.Logger instance
  - Initialized once via log.Init()
  - Thread-safe concurrent writes

Context Loggers:
  - WithComponent: add component name to all logs ("station", "provider")
  - WithStationID / WithEVSEID / WithProviderID: add entity id context

# Usage

Initializing the logger:

	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
		Output:     os.Stdout,
	})

Structured logging:

	log.Logger.Info().
		Str("evse_id", "DE*GEF*E123456*1").
		Str("status", "occupied").
		Msg("EVSE status changed")

Component loggers:

	providerLog := log.WithComponent("provider")
	providerLog.Error().Err(err).Msg("upstream push failed")

# Integration Points

This package integrates with:

  - pkg/station, pkg/evse: entity mutation and callback-failure logging
  - pkg/provider: flush cycle and upstream error logging
  - cmd/wwcpd: daemon startup and shutdown logging
*/
package log
