package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/platform/logging"
)

const (
	// HeaderRequestID carries the per-request id.
	HeaderRequestID = "X-Request-ID"

	// ContextKeyRequestID is the gin context key of the request id.
	ContextKeyRequestID = "request_id"
)

// RequestID accepts or generates a request id and attaches it to the
// response, the request context, and the context logger.
func RequestID() gin.HandlerFunc {
	return idMiddleware(idMiddlewareConfig{
		header: HeaderRequestID,
		key:    ContextKeyRequestID,
		enrich: []func(ctx context.Context, id string) context.Context{ContextWithRequestID, logging.WithRequestID},
	})
}

// GetRequestID returns the request id, or "" outside the middleware.
func GetRequestID(c *gin.Context) string {
	return ginString(c, ContextKeyRequestID)
}
