package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/venuehub/allocation-api/internal/service"
)

// Metrics returns middleware that records per-route request metrics. The
// admin UI polls the round status every two seconds, so these histograms are
// the primary latency signal for the allocation endpoints.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil || c.FullPath() == "/metrics" {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, status, duration)
	}
}
