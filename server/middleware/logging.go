package middleware

import (
	"slices"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/xmlrpc/logger"
	"github.com/kbukum/xmlrpc/util"
)

var quietPaths = []string{"/health", "/version"}

// RequestLogger logs every request with status, latency and request ID.
// Health and version checks are skipped.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if slices.Contains(quietPaths, c.Request.URL.Path) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := logger.MergeWithDuration(logger.Fields(
			"http_method", c.Request.Method,
			"path", c.Request.URL.Path,
			logger.FieldStatus, status,
			logger.FieldRemote, c.ClientIP(),
		), time.Since(start))
		if auth := c.GetHeader("Authorization"); auth != "" {
			fields["authorization"] = util.MaskAuthorization(auth)
		}
		if m, ok := c.Get(logger.FieldMethod); ok {
			fields[logger.FieldMethod] = m
		}
		if err := c.Errors.Last(); err != nil {
			fields[logger.FieldError] = err.Error()
		}

		l := log.WithContext(c.Request.Context())
		switch {
		case status >= 500:
			l.Error("Request completed", fields)
		case status >= 400:
			l.Warn("Request completed", fields)
		default:
			l.Debug("Request completed", fields)
		}
	}
}
