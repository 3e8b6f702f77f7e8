// Package log records resolution events for gattkit.
//
// This package defines the Logger interface and the Event type for capturing
// every flags and op code resolution performed by the resolver. It is
// separate from operational logging (slog) - the event log provides a
// machine-readable trace of which payloads produced which capability tags.
//
// # Basic Usage
//
// Resolvers accept a Logger in their configuration:
//
//	// For development: log to console via slog
//	cfg.Events = log.NewSlogAdapter(slog.Default())
//
//	// For analysis: write to binary file
//	cfg.Events, _ = log.NewFileLogger("/var/log/gattkit/resolve.glog")
//
//	// Both
//	cfg.Events = log.Tee(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # File Format
//
// Log files are a stream of CBOR-encoded events with the .glog extension.
// The gattkit events command views and summarises them.
package log
