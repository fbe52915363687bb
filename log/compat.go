// Package log adapts luxfi/log to the small go-ethereum-shaped logging
// surface the validator-core binaries and pack package actually call:
// a Logger type, Trace/Debug/Error against the process-wide default, and
// the handler/SetDefault pair the CLI entrypoints use to point that
// default at a terminal or a rotated file.
package log

import (
	"io"
	"log/slog"

	luxlog "github.com/luxfi/log"
)

type Logger = luxlog.Logger

func Trace(msg string, ctx ...interface{}) { luxlog.Root().Trace(msg, ctx...) }
func Debug(msg string, ctx ...interface{}) { luxlog.Root().Debug(msg, ctx...) }
func Error(msg string, ctx ...interface{}) { luxlog.Root().Error(msg, ctx...) }

// NewLogger returns a logger with the specified handler set.
func NewLogger(h slog.Handler) Logger {
	return luxlog.Root()
}

// NewTerminalHandler creates a handler that writes to terminal.
func NewTerminalHandler(w io.Writer, useColor bool) slog.Handler {
	return slog.NewTextHandler(w, nil)
}

// SetDefault sets the default logger.
func SetDefault(l Logger) {
	luxlog.SetDefault(l)
}
