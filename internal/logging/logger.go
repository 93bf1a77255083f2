package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

type Logger = zerolog.Logger

// New returns a timestamped logger writing JSON to stderr. An unknown or empty
// level falls back to info.
func New(level string) *zerolog.Logger {
	return NewWithWriter(os.Stderr, level)
}

func NewWithWriter(w io.Writer, level string) *zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	logger := zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	return &logger
}

// Nop discards everything. Used by tests and by callers without a logger.
func Nop() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}
