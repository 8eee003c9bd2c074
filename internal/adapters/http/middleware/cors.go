package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/platform/config"
)

// CORS applies the configured cross-origin policy. Preflight requests are
// answered here and never reach the router.
func CORS(cfg *config.CORSConfig) gin.HandlerFunc {
	opts := cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", HeaderRequestID, HeaderCorrelationID},
		ExposedHeaders: []string{HeaderRequestID, HeaderCorrelationID},
	}

	if cfg != nil {
		if len(cfg.AllowedOrigins) > 0 {
			opts.AllowedOrigins = cfg.AllowedOrigins
		}
		if len(cfg.AllowedMethods) > 0 {
			opts.AllowedMethods = cfg.AllowedMethods
		}
		if len(cfg.AllowedHeaders) > 0 {
			opts.AllowedHeaders = cfg.AllowedHeaders
		}
		opts.MaxAge = int(cfg.MaxAge.Seconds())
	}

	return FromHTTP(cors.Handler(opts))
}
