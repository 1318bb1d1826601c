// Package logging supplies the structured-logging side channel used by
// the renderer, thread pool, and ZIP reader. It wraps zerolog behind a
// small interface so the rest of the tree depends on a handful of
// methods rather than on zerolog's types directly.
package logging

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// Logger is the subset of zerolog's API this module relies on.
type Logger interface {
	Debug() *zerolog.Event
	Info() *zerolog.Event
	Warn() *zerolog.Event
	Error() *zerolog.Event
	With() zerolog.Context
}

var (
	mu      sync.Mutex
	base    zerolog.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	current                = base
)

// SetOutput redirects every logger vended by this package to w. It
// exists so tests can capture output instead of writing to stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	current = zerolog.New(w).With().Timestamp().Logger()
}

// SetLevel sets the minimum level emitted by loggers vended from this
// point forward.
func SetLevel(lvl zerolog.Level) {
	mu.Lock()
	defer mu.Unlock()
	current = current.Level(lvl)
}

// Named returns a child logger tagged with a "component" field, used
// by the renderer, thread pool, and ZIP reader to identify their log
// lines.
func Named(component string) zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return current.With().Str("component", component).Logger()
}
