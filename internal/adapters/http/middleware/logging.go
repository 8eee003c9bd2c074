package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/platform/logging"
)

// Logging logs each request's completion through the context logger.
// Probe paths under /-/ and the given skipPaths are not logged.
func Logging(skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if _, ok := skip[path]; ok || strings.HasPrefix(path, "/-/") {
			c.Next()
			return
		}

		start := time.Now()

		c.Next()

		ctx := c.Request.Context()
		status := c.Writer.Status()
		latency := time.Since(start)

		level := slog.LevelInfo
		switch {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}

		attrs := []slog.Attr{
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("route", c.FullPath()),
			slog.Int("status", status),
			slog.Duration("latency", latency),
			slog.Int("bytes", c.Writer.Size()),
			slog.String("client_ip", c.ClientIP()),
		}
		if user := UserIDFromContext(ctx); user != "" {
			attrs = append(attrs, slog.String("user_id", user))
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("errors", c.Errors.String()))
		}

		logging.FromContext(ctx).LogAttrs(ctx, level, "request completed", attrs...)
	}
}
