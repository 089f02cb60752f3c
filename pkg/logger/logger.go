package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// FileOptions enables a rotated log file next to stdout. An empty Path keeps
// logging on stdout only.
type FileOptions struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

func New(lvl string, addSource bool, environment string) *slog.Logger {
	return NewWithFile(lvl, addSource, environment, FileOptions{})
}

// NewWithFile builds the application logger. Records go to stdout and, when
// file.Path is set, to a lumberjack-rotated file as well.
func NewWithFile(lvl string, addSource bool, environment string, file FileOptions) *slog.Logger {
	return slog.New(newHandler(writer(file), lvl, addSource, environment)).With(
		slog.String("environment", environment),
	)
}

func newHandler(w io.Writer, lvl string, addSource bool, environment string) slog.Handler {
	opts := &slog.HandlerOptions{
		Level:     parseLevel(lvl),
		AddSource: addSource,
	}

	if strings.ToLower(environment) == "prod" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

func writer(file FileOptions) io.Writer {
	if file.Path == "" {
		return os.Stdout
	}

	return io.MultiWriter(os.Stdout, &lumberjack.Logger{
		Filename:   file.Path,
		MaxSize:    file.MaxSizeMB,
		MaxBackups: file.MaxBackups,
		MaxAge:     file.MaxAgeDays,
		Compress:   file.Compress,
	})
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
