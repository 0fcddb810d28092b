package fontatlas

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// silent is the logger in effect until SetLogger is called.
var silent = slog.New(nopHandler{})

var logger atomic.Pointer[slog.Logger]

func init() { logger.Store(silent) }

// nopHandler drops every record. Enabled reports false for all levels, so
// log calls return before their attributes are built.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// SetLogger routes fontatlas diagnostics to l. A nil l silences them
// again, which is also the initial state. It may be called while faces
// are being built on other goroutines.
//
// Debug records cover face construction and glyphs that failed to render.
// Info records mark faces being created or rebuilt. Warn records report
// lost texture data and fonts whose kerning could not be read.
//
//	fontatlas.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = silent
	}
	logger.Store(l)
}

// Logger returns the logger set by SetLogger.
func Logger() *slog.Logger {
	return logger.Load()
}
