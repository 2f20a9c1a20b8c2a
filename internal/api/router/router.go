package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/moondec/syllabus/config"
	"github.com/moondec/syllabus/internal/api/handler"
	"github.com/moondec/syllabus/internal/api/middleware"
	"github.com/moondec/syllabus/pkg/metrics"
	"github.com/moondec/syllabus/pkg/redis"
)

// defaultBodyLimit 非上传接口的请求体上限
const defaultBodyLimit = 1 << 20

// Setup 初始化并返回 Gin 路由引擎
// rdb 与 m 均可为 nil：无 Redis 时不限流，无指标时不暴露 /metrics
func Setup(cfg *config.Config, h *handler.Handler, rdb *redis.Client, m *metrics.Metrics, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.Metrics(m))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	if cfg.Metrics.Enabled && m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	uploadLimit := cfg.Server.MaxUploadMB << 20
	if uploadLimit <= 0 {
		uploadLimit = 20 << 20
	}
	// multipart 边界与表单字段的额外开销
	uploadLimit += 1 << 20

	generateLimit := middleware.RateLimit(rdb, cfg.Wizard.GenerateRateLimit, cfg.Wizard.GenerateRateWindow, logger)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		v1.GET("/fields", h.Field.List)
		v1.GET("/downloads/:token", h.Download.Download)

		// 向导模块
		sessions := v1.Group("/wizard/sessions")
		{
			sessions.POST("", h.Wizard.Create)
			sessions.GET("/:id", h.Wizard.Get)
			sessions.DELETE("/:id", h.Wizard.Discard)
			sessions.POST("/:id/upload", middleware.BodyLimit(uploadLimit), h.Wizard.Upload)

			small := sessions.Group("/:id", middleware.BodyLimit(defaultBodyLimit))
			{
				small.POST("/select", h.Wizard.Select)
				small.POST("/manual", h.Wizard.Manual)
				small.POST("/back", h.Wizard.Back)
				small.PATCH("/fields", h.Wizard.UpdateField)
				small.POST("/symbols/toggle", h.Wizard.ToggleSymbol)
				small.PUT("/language", h.Wizard.SetLanguage)
				small.POST("/generate", generateLimit, h.Wizard.Generate)
				small.POST("/generate/batch", generateLimit, h.Wizard.GenerateBatch)
				small.POST("/export", h.Wizard.Export)
				small.POST("/restart", h.Wizard.Restart)
				small.POST("/open/:archive_id", h.Wizard.OpenArchived)
			}
		}

		// 提供方配置
		settings := v1.Group("/settings", middleware.BodyLimit(defaultBodyLimit))
		{
			settings.GET("/provider", h.Settings.GetProvider)
			settings.PUT("/provider", h.Settings.UpdateProvider)
		}

		// 归档模块
		archive := v1.Group("/archive", middleware.BodyLimit(defaultBodyLimit))
		{
			archive.GET("", h.Archive.List)
			archive.GET("/:id", h.Archive.Get)
			archive.DELETE("/:id", h.Archive.Delete)
			archive.POST("/:id/export", h.Archive.Export)
		}
	}

	return r
}
