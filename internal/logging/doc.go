// Package logging builds the slog loggers used across the Kai client.
//
// Two output formats exist: a compact console format for interactive use and
// JSON for machine consumption. NewFromConfig mirrors output to a log file
// in the configured log directory. Components tag their loggers through
// WithComponent so console lines read "TIME LEVEL component: message".
package logging
