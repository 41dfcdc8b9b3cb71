// Package logging holds the SDK-wide structured logger. It is silent until
// the embedding application installs one.
package logging

import (
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

var logger atomic.Pointer[zerolog.Logger]

func init() {
	nop := zerolog.Nop()
	logger.Store(&nop)
}

// SetLogger installs l as the SDK logger.
func SetLogger(l zerolog.Logger) {
	logger.Store(&l)
}

// L returns the SDK logger.
func L() *zerolog.Logger {
	return logger.Load()
}

// Component returns the SDK logger tagged with a component name.
func Component(name string) zerolog.Logger {
	return L().With().Str("component", name).Logger()
}

// NewConsole builds a human-readable logger at the given level
// ("debug", "info", "warn", "error"; anything else means info).
func NewConsole(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}
