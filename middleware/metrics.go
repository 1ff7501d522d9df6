package middleware

import (
	"strconv"

	"letter-simplify-service/metrics"

	"github.com/gin-gonic/gin"
)

// MetricsMiddleware records a request counter per route and status code.
// The route template (not the raw path) keeps label cardinality bounded.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RequestsTotal.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
