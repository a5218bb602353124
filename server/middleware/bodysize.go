package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// BodySizeLimit restricts the request body to limit bytes. Reads past the
// limit fail, which the RPC handler reports as a parse fault.
func BodySizeLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
