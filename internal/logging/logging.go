// Package logging provides structured logging setup using log/slog.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	// EnvDebug enables debug logging when set to "1".
	EnvDebug = "MONINET_DEBUG"
	// EnvFormat selects the handler: "json" or anything else for text.
	EnvFormat = "MONINET_LOG_FORMAT"
)

// Level represents the logging verbosity level.
type Level int

const (
	// LevelInfo is the default logging level for normal operation.
	LevelInfo Level = iota
	// LevelDebug enables verbose debug output, including skipped ticks.
	LevelDebug
)

// Format selects the log line encoding.
type Format int

const (
	// FormatText writes key=value lines.
	FormatText Format = iota
	// FormatJSON writes one JSON object per line.
	FormatJSON
)

// New builds a logger writing to w.
func New(w io.Writer, level Level, format Format) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level.slogLevel()}

	var handler slog.Handler
	switch format {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Setup initializes the global slog logger writing to stderr.
// Call this once at application startup.
func Setup(level Level, format Format) {
	slog.SetDefault(New(os.Stderr, level, format))
}

// SetupFromEnv initializes the logger based on environment variables.
// Set MONINET_DEBUG=1 to enable debug logging and MONINET_LOG_FORMAT=json
// for JSON output.
func SetupFromEnv() {
	level := LevelInfo
	if os.Getenv(EnvDebug) == "1" {
		level = LevelDebug
	}
	format := FormatText
	if strings.EqualFold(os.Getenv(EnvFormat), "json") {
		format = FormatJSON
	}
	Setup(level, format)
}

func (l Level) slogLevel() slog.Level {
	if l == LevelDebug {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
