// Package logger provides structured logging for the acceleration layer.
// It wraps zerolog behind a small key-value interface so packages depend on
// the interface rather than a concrete logging backend.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger is the logging interface used across the acceleration layer.
// Args are alternating key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(key string, value any) Logger
}

type zeroLogger struct {
	zl zerolog.Logger
}

// New creates a Logger writing JSON to w at the given level.
// Unknown level strings default to info.
func New(w io.Writer, level string) Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zl := zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	return &zeroLogger{zl: zl}
}

// NewConsole creates a Logger with human-readable console output on stderr.
func NewConsole(level string) Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	cw := zerolog.ConsoleWriter{Out: os.Stderr}
	zl := zerolog.New(cw).Level(lvl).With().Timestamp().Logger()
	return &zeroLogger{zl: zl}
}

// Nop returns a Logger that discards everything. Used in tests and as the
// default when no logger is supplied.
func Nop() Logger {
	return &zeroLogger{zl: zerolog.Nop()}
}

func (l *zeroLogger) Debug(msg string, args ...any) { l.emit(l.zl.Debug(), msg, args) }
func (l *zeroLogger) Info(msg string, args ...any)  { l.emit(l.zl.Info(), msg, args) }
func (l *zeroLogger) Warn(msg string, args ...any)  { l.emit(l.zl.Warn(), msg, args) }
func (l *zeroLogger) Error(msg string, args ...any) { l.emit(l.zl.Error(), msg, args) }

func (l *zeroLogger) With(key string, value any) Logger {
	return &zeroLogger{zl: l.zl.With().Interface(key, value).Logger()}
}

func (l *zeroLogger) emit(ev *zerolog.Event, msg string, args []any) {
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = "arg"
		}
		ev = ev.Interface(key, args[i+1])
	}
	ev.Msg(msg)
}
