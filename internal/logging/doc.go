// Package logging provides structured logging for screwctl.
//
// This package wraps a zap logger with convenience functions for common
// logging patterns and serial-link specific helpers.
//
// # Log Levels
//
//   - Debug: Raw byte dumps, disconnected-send diagnostics
//   - Info: Link open/close, commands sent, data received
//   - Warn: Out-of-range values, rejected imports, read loop failures
//   - Error: Send failures, connection failures
//
// # Specialized Logging
//
//	logging.LogLinkEvent("/dev/ttyUSB0", "opened")
//	logging.LogSerialTx("/dev/ttyUSB0", "SET TORQUE 40\r\n")
//	logging.LogSerialRx("/dev/ttyUSB0", "OK")
//
// # Configuration
//
// Logging is silent unless a level is given or SCREWCTL_LOG_LEVEL is set:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// The interactive panel should log to a file (SCREWCTL_LOG_FILE or
// --log-file) since it owns the terminal.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use.
package logging
