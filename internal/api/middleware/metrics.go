package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/moondec/syllabus/pkg/metrics"
)

// Metrics 记录请求数与耗时；未匹配路由统一记为 "unmatched"，避免标签基数膨胀
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(route, c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}
