package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/xmlrpc/codec"
	"github.com/kbukum/xmlrpc/errors"
	"github.com/kbukum/xmlrpc/logger"
)

// Recovery returns a Gin middleware that recovers from panics, logs the
// stack, and answers with an internal error fault.
func Recovery(log *logger.Logger, cd codec.Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.WithContext(c.Request.Context()).Error("Panic recovered", map[string]any{
					"error":     fmt.Sprintf("%v", r),
					"stack":     string(debug.Stack()),
					"path":      c.Request.URL.Path,
					"client_ip": c.ClientIP(),
				})
				WriteFault(c, cd, errors.Internal(fmt.Errorf("panic: %v", r)).ToFault())
			}
		}()
		c.Next()
	}
}
