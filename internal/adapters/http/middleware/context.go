// Package middleware provides the gin middleware of the HTTP API.
package middleware

import "context"

type contextKey string

const (
	ctxKeyRequestID     contextKey = "request_id"
	ctxKeyCorrelationID contextKey = "correlation_id"
	ctxKeyUserID        contextKey = "user_id"
)

// RequestIDFromContext returns the request id, or "" when unset.
// Provider clients forward it upstream.
func RequestIDFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxKeyRequestID)
}

// CorrelationIDFromContext returns the correlation id, or "" when unset.
func CorrelationIDFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxKeyCorrelationID)
}

// UserIDFromContext returns the authenticated subject, or "" for anonymous callers.
func UserIDFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxKeyUserID)
}

// ContextWithRequestID stores a request id in ctx.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, id)
}

// ContextWithCorrelationID stores a correlation id in ctx.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyCorrelationID, id)
}

// ContextWithUserID stores the caller's subject in ctx.
func ContextWithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyUserID, id)
}

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}

	v, _ := ctx.Value(key).(string)

	return v
}
