package endpoint

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/xmlrpc/component"
	"github.com/kbukum/xmlrpc/observability"
	"github.com/kbukum/xmlrpc/version"
)

// HealthChecker returns health status for registered components.
type HealthChecker func(ctx context.Context) []component.Health

// Health reports service health including component statuses. An unhealthy
// component turns the response into 503.
func Health(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		sh := observability.NewServiceHealth(serviceName, version.Version)
		if checker != nil {
			for _, h := range checker(c.Request.Context()) {
				sh.AddComponent(h)
			}
		}

		status := http.StatusOK
		if sh.Status == component.StatusUnhealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, sh)
	}
}
