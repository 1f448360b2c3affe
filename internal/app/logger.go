package app

import (
	"io"
	"log/slog"
	"strings"
)

// NewLogger returns a slog logger writing to w. level accepts the slog level
// names ("debug", "INFO", "warn+2"); anything unparsable means info. format
// "json" selects JSON output, everything else text.
func NewLogger(level, format string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
