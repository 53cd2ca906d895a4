// Package log provides structured protocol logging for FarCaster.
//
// This package defines the Logger interface and Event types for capturing
// protocol-level events (frames, connection state changes, errors). It is
// separate from operational logging - protocol capture provides a complete
// machine-readable trace of envelope traffic for debugging and analysis.
//
// # Basic Usage
//
// Applications configure logging by providing a Logger implementation:
//
//	// For development: log to console via slog
//	cfg.Logger = log.NewSlogAdapter(slog.Default())
//
//	// For production: write to binary capture file
//	cfg.Logger, _ = log.NewFileLogger("/var/log/farcaster/server.fclog")
//
//	// Both: use MultiLogger
//	cfg.Logger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # File Format
//
// Capture files are a concatenation of CBOR-encoded events, by convention
// with a .fclog extension. Reader streams them back with optional filtering.
package log
