package blendpack

import (
	"log/slog"

	"github.com/gogpu/blendpack/internal/logging"
)

// SetLogger configures the logger for blendpack and all its sub-packages.
// By default, blendpack produces no log output. Call SetLogger to enable
// logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by blendpack:
//   - [slog.LevelDebug]: internal diagnostics (program cache hits, composed sources, per-frame progress)
//   - [slog.LevelInfo]: lifecycle events (device created, backend selected)
//   - [slog.LevelWarn]: non-fatal issues (skipped shader files, program fallback, CPU fallback)
//
// Example:
//
//	// Enable debug-level logging for full diagnostics:
//	blendpack.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logging.SetLogger(l)
}

// Logger returns the current logger used by blendpack.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return logging.Logger()
}
