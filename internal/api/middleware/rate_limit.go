package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/moondec/syllabus/pkg/redis"
	"github.com/moondec/syllabus/pkg/response"
)

// RateLimit 基于 Redis 滑动窗口的速率限制中间件，用于 AI 生成等高成本接口
// 计数维度为 客户端 IP + 路由 + 会话 ID
// rdb 为 nil 或 Redis 出错时降级放行
func RateLimit(rdb *redis.Client, limit int, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || limit <= 0 {
			c.Next()
			return
		}

		key := fmt.Sprintf("syllabus:rate_limit:%s:%s:%s", c.ClientIP(), c.FullPath(), c.Param("id"))
		allowed, err := rdb.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			logger.Warn("限流检查失败，放行", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		if !allowed {
			response.Error(c, http.StatusTooManyRequests, 10004, "Zbyt wiele żądań, spróbuj ponownie za chwilę")
			c.Abort()
			return
		}

		c.Next()
	}
}
