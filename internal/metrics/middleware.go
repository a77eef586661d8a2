package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware records request duration and count labelled by route pattern.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}
		status := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method
		HTTPRequestDuration.WithLabelValues(method, path, status).Observe(time.Since(start).Seconds())
		HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	}
}
