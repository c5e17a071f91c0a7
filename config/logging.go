package config

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// NewLogger builds the root logger. Components derive prefixed children
// with WithPrefix.
func NewLogger(w io.Writer, level, format string) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           ParseLogLevel(level),
		Formatter:       ParseLogFormatter(format),
		ReportTimestamp: true,
	})
}

// ParseLogLevel falls back to info for anything it does not know.
func ParseLogLevel(level string) log.Level {
	l, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return log.InfoLevel
	}
	return l
}

func ParseLogFormatter(format string) log.Formatter {
	switch strings.ToLower(format) {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}
