// Package common carries cross-cutting helpers: logger construction, version
// information, and the agent configuration file.
package common

import (
	"log/slog"
	"os"
)

// LoggingOpts configures the process logger.
type LoggingOpts struct {
	// Service is attached to every record as the "service" attribute.
	Service string

	// JSON switches to the JSON handler, for log collectors.
	JSON bool

	// Debug lowers the level to debug.
	Debug bool

	// Version is attached to every record when set.
	Version string
}

// SetupLogger builds the process slog logger.
func SetupLogger(opts *LoggingOpts) *slog.Logger {
	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}

	log := slog.New(handler)
	if opts.Service != "" {
		log = log.With("service", opts.Service)
	}
	if opts.Version != "" {
		log = log.With("version", opts.Version)
	}
	return log
}
