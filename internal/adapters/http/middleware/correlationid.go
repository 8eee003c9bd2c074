package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/platform/logging"
)

const (
	// HeaderCorrelationID ties together every request of one user action,
	// including the provider calls it fans out to.
	HeaderCorrelationID = "X-Correlation-ID"

	// ContextKeyCorrelationID is the gin context key of the correlation id.
	ContextKeyCorrelationID = "correlation_id"
)

// CorrelationID propagates the upstream correlation id or starts a new one.
func CorrelationID() gin.HandlerFunc {
	return idMiddleware(idMiddlewareConfig{
		header: HeaderCorrelationID,
		key:    ContextKeyCorrelationID,
		enrich: []func(ctx context.Context, id string) context.Context{ContextWithCorrelationID, logging.WithCorrelationID},
	})
}

// GetCorrelationID returns the correlation id, or "" outside the middleware.
func GetCorrelationID(c *gin.Context) string {
	return ginString(c, ContextKeyCorrelationID)
}
