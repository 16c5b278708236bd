// Package sysutil holds process-level helpers used by the entry point:
// logger construction and small string utilities.
package sysutil

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// SetLogLevel configures the global zerolog level based on a string value.
// Supported values (case-insensitive): debug, info, warn, error, fatal, panic.
func SetLogLevel(lvl string) {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info", "":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn", "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "fatal":
		zerolog.SetGlobalLevel(zerolog.FatalLevel)
	case "panic":
		zerolog.SetGlobalLevel(zerolog.PanicLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// NewLogger builds the process logger. With pretty set it writes
// human-readable console lines, otherwise one JSON object per line. A nil
// w means stderr.
func NewLogger(w io.Writer, pretty bool, service string) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano
	return zerolog.New(w).With().Timestamp().Str("service", service).Logger()
}

// FirstNonEmpty returns the first non-blank string from a variadic list.
// If all values are blank, it returns "".
func FirstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
