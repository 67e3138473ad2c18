package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// SlogLogger adapts a *slog.Logger to Logger. The context is passed through
// so handlers can pick values out of it.
type SlogLogger struct {
	l *slog.Logger
}

func NewSlogLogger(l *slog.Logger) *SlogLogger {
	return &SlogLogger{l: l}
}

// newSlog builds a text or JSON slog logger writing to w at level.
func newSlog(w io.Writer, level, format string) (*SlogLogger, error) {
	var lv slog.Level
	if err := lv.UnmarshalText([]byte(defaultLevel(level))); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	ho := &slog.HandlerOptions{Level: lv}
	switch strings.ToLower(format) {
	case "", "text":
		return NewSlogLogger(slog.New(slog.NewTextHandler(w, ho))), nil
	case "json":
		return NewSlogLogger(slog.New(slog.NewJSONHandler(w, ho))), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

func (s *SlogLogger) log(ctx context.Context, level slog.Level, msg string, args []any) {
	if ctx == nil {
		ctx = context.Background()
	}
	s.l.Log(ctx, level, msg, args...)
}

func (s *SlogLogger) Debug(ctx context.Context, msg string, args ...any) {
	s.log(ctx, slog.LevelDebug, msg, args)
}

func (s *SlogLogger) Info(ctx context.Context, msg string, args ...any) {
	s.log(ctx, slog.LevelInfo, msg, args)
}

func (s *SlogLogger) Warn(ctx context.Context, msg string, args ...any) {
	s.log(ctx, slog.LevelWarn, msg, args)
}

func (s *SlogLogger) Error(ctx context.Context, msg string, args ...any) {
	s.log(ctx, slog.LevelError, msg, args)
}

func (s *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{l: s.l.With(args...)}
}
