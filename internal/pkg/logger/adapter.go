package logger

import (
	"context"
	"log/slog"

	"wallet_engine/internal/app/port"
)

// slogAdapter реализует интерфейс port.Logger поверх *slog.Logger.
// Без явного логгера используется глобальный логгер пакета.
type slogAdapter struct {
	l *slog.Logger
}

// NewSlogAdapter создает port.Logger, пишущий в глобальный логгер.
func NewSlogAdapter() port.Logger {
	return &slogAdapter{}
}

// FromSlog wraps an existing slog logger, e.g. one writing into a test buffer.
func FromSlog(l *slog.Logger) port.Logger {
	return &slogAdapter{l: l}
}

// Nop returns a logger that discards everything.
func Nop() port.Logger {
	return &slogAdapter{l: slog.New(discardHandler{})}
}

func (a *slogAdapter) logger() *slog.Logger {
	if a.l != nil {
		return a.l
	}
	ensureInitialized()
	return globalLogger
}

func (a *slogAdapter) Info(msg string, args ...any) {
	a.logger().Info(msg, args...)
}

func (a *slogAdapter) Debug(msg string, args ...any) {
	a.logger().Debug(msg, args...)
}

func (a *slogAdapter) Warn(msg string, args ...any) {
	a.logger().Warn(msg, args...)
}

func (a *slogAdapter) Error(msg string, args ...any) {
	a.logger().Error(msg, args...)
}

// With returns a child logger carrying the given attributes.
func (a *slogAdapter) With(args ...any) port.Logger {
	return &slogAdapter{l: a.logger().With(args...)}
}

// discardHandler mirrors slog.DiscardHandler (Go 1.24+) for older toolchains.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }
