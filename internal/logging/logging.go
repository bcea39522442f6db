// Package logging adapts zerolog to the capi.Logger interface used by the
// client, the transport and the session.
package logging

import (
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// Logger is a capi.Logger backed by zerolog.
type Logger struct {
	zl zerolog.Logger
}

// NewLogger writes JSON entries tagged with role to w. Entries below level
// are dropped; an unknown level falls back to warn.
func NewLogger(role, level string, w io.Writer) *Logger {
	zl := zerolog.New(w).
		Level(ParseLevel(level)).
		With().
		Str("role", role).
		Timestamp().
		Logger()

	return &Logger{zl: zl}
}

// NewConsoleLogger is NewLogger with human-readable output, for the CLI.
func NewConsoleLogger(role, level string, w io.Writer) *Logger {
	return NewLogger(role, level, zerolog.ConsoleWriter{Out: w, NoColor: true})
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// ParseLevel maps a level name to a zerolog level.
func ParseLevel(level string) zerolog.Level {
	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || parsed == zerolog.NoLevel {
		return zerolog.WarnLevel
	}

	return parsed
}

// Zerolog exposes the underlying logger.
func (l *Logger) Zerolog() zerolog.Logger {
	return l.zl
}

// Debug implements capi.Logger.
func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	l.zl.Debug().Fields(fields).Msg(msg)
}

// Info implements capi.Logger.
func (l *Logger) Info(msg string, fields map[string]interface{}) {
	l.zl.Info().Fields(fields).Msg(msg)
}

// Warn implements capi.Logger.
func (l *Logger) Warn(msg string, fields map[string]interface{}) {
	l.zl.Warn().Fields(fields).Msg(msg)
}

// Error implements capi.Logger.
func (l *Logger) Error(msg string, fields map[string]interface{}) {
	l.zl.Error().Fields(fields).Msg(msg)
}
