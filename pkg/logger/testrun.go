package logger

import (
	"io"
	"log/slog"
)

// NewTestHandler discards all output; used by unit tests.
func NewTestHandler(level slog.Level) slog.Handler {
	return slog.NewTextHandler(io.Discard, nil)
}
