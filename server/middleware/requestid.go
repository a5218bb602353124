package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/xmlrpc/logger"
	"github.com/kbukum/xmlrpc/validation"
)

// HeaderRequestID carries the request ID in both directions.
const HeaderRequestID = "X-Request-Id"

// RequestID propagates a valid incoming X-Request-Id or generates a new one.
// The ID is stored on the Gin context, in the request context for logging,
// and echoed in the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || validation.New().UUID("request_id", id).HasErrors() {
			id = uuid.NewString()
		}
		c.Set(logger.FieldRequestID, id)
		c.Request = c.Request.WithContext(logger.ContextWithRequestID(c.Request.Context(), id))
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}
