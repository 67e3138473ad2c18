package logging

import (
	"fmt"
	"io"
	"strings"
)

// Options selects the logging backend and its output shape.
type Options struct {
	Level   string // debug, info, warn, error
	Format  string // text or json (slog backend only)
	Backend string // slog or zap
}

// New builds the configured Logger writing to w.
func New(w io.Writer, opts Options) (Logger, error) {
	switch strings.ToLower(opts.Backend) {
	case "", "slog":
		return newSlog(w, opts.Level, opts.Format)
	case "zap":
		return newZap(w, opts.Level)
	default:
		return nil, fmt.Errorf("unknown log backend %q", opts.Backend)
	}
}

func defaultLevel(level string) string {
	if level == "" {
		return "info"
	}
	return strings.ToLower(level)
}
