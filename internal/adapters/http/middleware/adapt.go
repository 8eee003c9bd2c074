package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// FromHTTP adapts net/http middleware to gin. When mw answers the request
// without calling the next handler, the gin chain is aborted.
func FromHTTP(mw func(http.Handler) http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		passed := false

		next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			passed = true
			c.Request = r
			c.Next()
		})

		mw(next).ServeHTTP(c.Writer, c.Request)

		if !passed {
			c.Abort()
		}
	}
}
