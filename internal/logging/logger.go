// Package logging provides structured logging for pyshell.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// NewLogger creates a new structured logger with the specified format and level.
// Format should be "json" or "text".
// Level should be "debug", "info", "warn", or "error".
func NewLogger(format, level string, verbose bool) *slog.Logger {
	return NewLoggerWithWriter(os.Stderr, format, level, verbose)
}

// NewLoggerWithWriter creates a logger that writes to a custom writer.
// A nil writer discards all output.
func NewLoggerWithWriter(w io.Writer, format, level string, verbose bool) *slog.Logger {
	if w == nil {
		w = io.Discard
	}

	logLevel := parseLevel(level)
	if verbose {
		logLevel = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
		// Add source location for debug level
		AddSource: logLevel == slog.LevelDebug,
	}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler)
}

// Options selects where and how the shell logs.
type Options struct {
	Format  string
	Level   string
	Verbose bool

	// File, when set, receives all log output.
	File string

	// Quiet discards output that would otherwise go to stderr.
	// The window owns the terminal while it is shown.
	Quiet bool
}

// Open builds the shell logger. The returned closer releases the log file,
// if one was opened, and is always safe to call.
func Open(opts Options) (*slog.Logger, io.Closer, error) {
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		return NewLoggerWithWriter(f, opts.Format, opts.Level, opts.Verbose), f, nil
	}

	if opts.Quiet {
		return NewLoggerWithWriter(io.Discard, opts.Format, opts.Level, opts.Verbose), nopCloser{}, nil
	}
	return NewLogger(opts.Format, opts.Level, opts.Verbose), nopCloser{}, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// parseLevel converts a string level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetDefault sets the default logger for the slog package.
func SetDefault(logger *slog.Logger) {
	slog.SetDefault(logger)
}
