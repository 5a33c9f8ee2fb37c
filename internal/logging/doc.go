// Package logging provides structured logging for climateir.
//
// This package wraps a zap logger with package-level helpers so protocol,
// transmit and server code can log without threading a logger through every
// call.
//
// # Log Levels
//
//   - Debug: frame hex dumps, bridge payloads
//   - Info: transmissions, connections, HTTP requests
//   - Warn: normalized input, toggle-power caveats
//   - Error: sink failures, startup failures
//
// # Configuration
//
// Logging is silent unless a level is given, either through Initialize or the
// CLIMATEIR_LOG_LEVEL environment variable:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// InitializeWithOptions adds JSON output and a rotating log file (lumberjack):
//
//	logging.InitializeWithOptions(logging.Options{
//	    Level: "info",
//	    File:  logging.FileOptions{Path: "/var/log/climateir.log", MaxSizeMB: 10},
//	})
//
// # Thread Safety
//
// Logging functions are safe for concurrent use. Initialize should be called
// once at startup before other goroutines log.
package logging
