package logging

import (
	"context"
	"log/slog"
)

// SlogLogger adapts a *slog.Logger to the Logger interface. The zero value
// is not usable; construct it with NewSlogLogger.
type SlogLogger struct {
	l *slog.Logger
}

var _ Logger = (*SlogLogger)(nil)

func NewSlogLogger(l *slog.Logger) *SlogLogger {
	return &SlogLogger{l: l}
}

func (sl *SlogLogger) log(ctx context.Context, level slog.Level, msg string, args ...any) {
	sl.l.Log(ctx, level, msg, args...)
}

func (sl *SlogLogger) Debug(ctx context.Context, msg string, args ...any) {
	sl.log(ctx, slog.LevelDebug, msg, args...)
}

func (sl *SlogLogger) Info(ctx context.Context, msg string, args ...any) {
	sl.log(ctx, slog.LevelInfo, msg, args...)
}

func (sl *SlogLogger) Warn(ctx context.Context, msg string, args ...any) {
	sl.log(ctx, slog.LevelWarn, msg, args...)
}

func (sl *SlogLogger) Error(ctx context.Context, msg string, args ...any) {
	sl.log(ctx, slog.LevelError, msg, args...)
}

// With returns a child logger carrying the given key-value pairs on every
// record.
func (sl *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{l: sl.l.With(args...)}
}
