// Package logger provides structured logging functionality for the application.
//
// It utilizes Go's standard library log/slog package to implement structured JSON logging
// with configurable log levels, and carries request-scoped loggers through
// context.Context so HTTP handlers and background generation runs log with the
// same attributes (trace_id, section, run_id).
package logger
