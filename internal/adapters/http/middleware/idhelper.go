package middleware

import (
	"context"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// maxIDLength bounds ids accepted from request headers.
const maxIDLength = 128

type idMiddlewareConfig struct {
	header string
	key    string
	enrich []func(ctx context.Context, id string) context.Context
}

// idMiddleware reuses the id from cfg.header when it is well formed and
// generates a UUID otherwise. The id is echoed in the response header.
func idMiddleware(cfg idMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(cfg.header)
		if !validID(id) {
			id = uuid.NewString()
		}

		c.Set(cfg.key, id)
		c.Header(cfg.header, id)

		ctx := c.Request.Context()
		for _, fn := range cfg.enrich {
			ctx = fn(ctx, id)
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// validID accepts short printable ASCII ids without spaces.
func validID(id string) bool {
	if id == "" || len(id) > maxIDLength {
		return false
	}

	for _, r := range id {
		if r > unicode.MaxASCII || !unicode.IsPrint(r) || unicode.IsSpace(r) {
			return false
		}
	}

	return true
}

func ginString(c *gin.Context, key string) string {
	v, _ := c.Get(key)
	s, _ := v.(string)

	return s
}
