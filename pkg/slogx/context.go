package slogx

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// WithContext stores logger in ctx for FromContext.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the request-scoped logger, or the default logger
// outside a request.
func FromContext(ctx context.Context) *slog.Logger {
	l, ok := ctx.Value(ctxKey{}).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return l
}

// With returns a context whose logger carries the extra attributes, so
// later steps of a multi-step operation log the same ids.
func With(ctx context.Context, args ...any) context.Context {
	return WithContext(ctx, FromContext(ctx).With(args...))
}
