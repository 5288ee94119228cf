package cli

import (
	"io"
	"log/slog"
)

// newLogger builds the diagnostics logger. Diagnostics stay quiet unless
// --verbose is set; command output never goes through it.
func newLogger(verbose bool, format string, w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	return slog.New(handler)
}
