// Package monitoring holds the process logger and progress reporting used by
// the long-running pipeline stages.
package monitoring

import (
	"io"
	"log/slog"
	"sync/atomic"
)

var logger atomic.Pointer[slog.Logger]

func init() {
	logger.Store(slog.Default())
}

// Logger returns the package logger.
func Logger() *slog.Logger {
	return logger.Load()
}

// SetLogger replaces the package logger. Passing nil installs a logger that
// discards everything.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger.Store(l)
}

// NewLogger builds a text or JSON logger writing to w.
func NewLogger(w io.Writer, verbose, jsonFormat bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	if jsonFormat {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Component returns the package logger tagged with a component name.
func Component(name string) *slog.Logger {
	return Logger().With(slog.String("component", name))
}
