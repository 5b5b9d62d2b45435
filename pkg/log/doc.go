// Package log provides structured event logging for llad.
//
// This package defines the Logger interface and Event types for capturing
// what happens between ports, devices and universes: binding changes, frame
// notifications and device registration. It is separate from operational
// logging (slog); the event log is a machine-readable trace for debugging.
//
// # Basic Usage
//
//	// For development: log to console via slog
//	cfg.EventLogger = log.NewSlogAdapter(slog.Default())
//
//	// For production: write to binary file
//	cfg.EventLogger, _ = log.NewFileLogger("/var/log/llad/events.llog")
//
//	// Both
//	cfg.EventLogger = log.NewMultiLogger(console, file)
//
// # File Format
//
// Log files are a stream of CBOR-encoded events with integer keys. Use
// Reader with a Filter to scan them.
package log
