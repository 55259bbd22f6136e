package upscale

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// silentHandler drops every record. Enabled reports false, so callers never
// build the attributes.
type silentHandler struct{}

func (silentHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (silentHandler) Handle(context.Context, slog.Record) error { return nil }
func (silentHandler) WithAttrs([]slog.Attr) slog.Handler        { return silentHandler{} }
func (silentHandler) WithGroup(string) slog.Handler             { return silentHandler{} }

var silent = slog.New(silentHandler{})

// pkgLogger is swapped atomically; frames may log from the render thread
// while the host reconfigures logging.
var pkgLogger atomic.Pointer[slog.Logger]

func init() {
	pkgLogger.Store(silent)
}

// SetLogger routes log output of upscale, render and the backends to l.
// The package is silent until SetLogger is called; nil silences it again.
// An Upscaler created with WithLogger uses its own logger instead.
//
// Levels:
//   - [slog.LevelDebug]: slot allocation, jitter sequence changes, resolution guidance
//   - [slog.LevelInfo]: committed configurations, failures resolved by a handler
//   - [slog.LevelWarn]: clamped sharpness, forced disable, degraded frames
//
//	upscale.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = silent
	}
	pkgLogger.Store(l)
}

// Logger returns the logger set by SetLogger.
func Logger() *slog.Logger {
	return pkgLogger.Load()
}
