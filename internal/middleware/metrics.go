package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"linkpage-be/internal/metrics"
)

// Metrics records request counts and latencies per matched route
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RequestServed(route, c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}
