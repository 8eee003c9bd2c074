package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/httprate"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/http/dto"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/platform/config"
)

// RateLimit limits requests per client IP with a sliding window. Disabled
// config yields a pass-through handler.
func RateLimit(cfg *config.RateLimitConfig) gin.HandlerFunc {
	if cfg == nil || !cfg.Enabled || cfg.Requests <= 0 || cfg.Window <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	limiter := httprate.Limit(cfg.Requests, cfg.Window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			writeJSONError(w, dto.ErrorCodeRateLimited, "rate limit exceeded, retry later")
		}),
	)

	return FromHTTP(limiter)
}
