package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Timeout puts a deadline on the request context. Handlers and provider
// clients observe it; the middleware never writes a response itself.
// Requests whose path starts with one of skipPrefixes keep the server's
// write timeout only.
func Timeout(timeout time.Duration, skipPrefixes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if timeout <= 0 || hasAnyPrefix(c.Request.URL.Path, skipPrefixes) {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}

	return false
}
