// Package logger builds the zerolog loggers used by the server.
//
// Standard output carries the MCP protocol, so every logger here writes to
// standard error or a caller-supplied writer.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// LevelEnv is the environment variable holding the log level.
const LevelEnv = "PIXEL_MCP_LOG_LEVEL"

// New returns a timestamped JSON logger writing to w.
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// NewConsole returns a human-readable logger on standard error.
func NewConsole(level zerolog.Level) zerolog.Logger {
	return New(zerolog.ConsoleWriter{Out: os.Stderr}, level)
}

// ParseLevel maps trace, debug, info, warn or error to a zerolog level.
// Anything else, including the empty string, yields info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// LevelFromEnv reads the level from LevelEnv.
func LevelFromEnv() zerolog.Level {
	return ParseLevel(os.Getenv(LevelEnv))
}

// Component returns a child logger tagged with a component field.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}
