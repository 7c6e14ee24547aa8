package logger

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type contextKey string

const loggerKey contextKey = "logger"

// FromContext returns the request-scoped logger carried in ctx, falling back
// to the global logger. Background jobs that never saw a request get the
// global one.
func FromContext(ctx context.Context) *zap.Logger {
	if scoped, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return scoped
	}
	return GetLogger()
}

// WithContext attaches a logger to ctx, typically one already annotated with
// the request id or the lot being worked on.
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromEcho returns the logger the request-id middleware stored on the echo
// context; handlers call this at the top of every operation.
func FromEcho(c echo.Context) *zap.Logger {
	if scoped, ok := c.Get("logger").(*zap.Logger); ok {
		return scoped
	}
	return GetLogger()
}
