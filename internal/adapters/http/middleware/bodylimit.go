package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/http/dto"
)

// BodyLimit rejects bodies declared larger than limit with 413 and caps
// the bytes read from the rest.
func BodyLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit <= 0 || c.Request.Body == nil {
			c.Next()
			return
		}

		if c.Request.ContentLength > limit {
			dto.AbortWithCode(c, dto.ErrorCodeTooLarge, "request body too large")
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}

// writeJSONError writes an error body from plain net/http middleware.
func writeJSONError(w http.ResponseWriter, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(dto.HTTPStatusFromCode(code))
	_ = json.NewEncoder(w).Encode(dto.NewErrorResponse(code, message))
}
