// Package logging assembles structured slog loggers for photosorter.
//
// It owns the console and JSON handlers, level parsing and output plumbing,
// the run_id handler that ties log lines to a sort run, and a no-op logger
// for tests and wiring code that cannot fail. Logs go to stderr by default so
// stdout carries only the run summary.
package logging
