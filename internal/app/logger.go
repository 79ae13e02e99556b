package app

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger builds the process logger. LOG_FORMAT=json selects machine
// output; the default "pretty" keeps a text handler for local work, except
// in production where json wins regardless.
func NewLogger(cfg *Config) *slog.Logger {
	return slog.New(newLogHandler(resolveLogFormat(cfg), os.Stdout)).
		With(slog.String("service", "ccube"))
}

func resolveLogFormat(cfg *Config) string {
	if cfg == nil {
		return "pretty"
	}
	if cfg.IsProduction() {
		return "json"
	}
	return cfg.LogFormat
}

func newLogHandler(format string, w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{AddSource: true}
	if format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}
