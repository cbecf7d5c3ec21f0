package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
)

// GinMiddleware records per-route request counts and latency.
func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		m.RecordRequest(c.Request.Context(), route, c.Writer.Status(), time.Since(start))
	}
}
