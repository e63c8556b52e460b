package main

import (
	"io"
	"log/slog"
)

// discardLogger is for commands whose stdout is the deliverable; engine
// diagnostics would only pollute pipeline output.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
