package middleware

import (
	"log/slog"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/http/dto"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/platform/logging"
)

// Recovery turns a panic into a 500 error body and logs the stack.
// It must run first so it covers every later handler.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			ctx := c.Request.Context()
			logging.FromContext(ctx).ErrorContext(ctx, "panic recovered",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
				slog.String("method", c.Request.Method),
				slog.String("path", c.Request.URL.Path),
			)

			if c.Writer.Written() {
				c.Abort()
				return
			}

			dto.AbortWithCode(c, dto.ErrorCodeInternal, "an internal error occurred")
		}()

		c.Next()
	}
}
