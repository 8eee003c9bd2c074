package logging

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

var defaultLogger = slog.Default()

// FromContext returns the request logger, or the default logger when ctx
// carries none.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return defaultLogger
	}

	if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return logger
	}

	return defaultLogger
}

// Lookup returns the logger stored in ctx, if any.
func Lookup(ctx context.Context) (*slog.Logger, bool) {
	if ctx == nil {
		return nil, false
	}

	logger, ok := ctx.Value(ctxKey{}).(*slog.Logger)
	return logger, ok
}

// WithContext stores a logger in the context.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// With returns a context whose logger carries the extra attributes.
func With(ctx context.Context, attrs ...any) context.Context {
	return WithContext(ctx, FromContext(ctx).With(attrs...))
}

// WithRequestID tags the context logger with request_id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return With(ctx, slog.String("request_id", requestID))
}

// WithTraceID tags the context logger with trace_id.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return With(ctx, slog.String("trace_id", traceID))
}

// WithCorrelationID tags the context logger with correlation_id.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return With(ctx, slog.String("correlation_id", correlationID))
}

// SetDefault sets the logger used when a context carries none.
func SetDefault(logger *slog.Logger) {
	defaultLogger = logger
	slog.SetDefault(logger)
}
