// Package logger provides structured logging with configurable log levels.
// It wraps the standard log/slog package, switching to JSON output in
// production and optionally mirroring records into a rotated log file.
package logger
