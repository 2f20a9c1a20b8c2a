package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/moondec/syllabus/config"
	"github.com/moondec/syllabus/internal/api/handler"
	"github.com/moondec/syllabus/internal/api/router"
	"github.com/moondec/syllabus/internal/client"
	"github.com/moondec/syllabus/internal/repository"
	"github.com/moondec/syllabus/internal/service"
	"github.com/moondec/syllabus/pkg/database"
	"github.com/moondec/syllabus/pkg/jwt"
	applogger "github.com/moondec/syllabus/pkg/logger"
	"github.com/moondec/syllabus/pkg/metrics"
	"github.com/moondec/syllabus/pkg/redis"
	"github.com/moondec/syllabus/pkg/sftp"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（默认 ./config/config.yaml）")
	flag.Parse()

	// 0. 本地开发时从 .env 注入 SYLLABUS_* 环境变量；文件不存在不算错误
	_ = godotenv.Load()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.String("llm_mode", cfg.LLM.Mode),
	)

	// 3. 连接数据库（归档存储）
	db, err := database.NewDB(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	// 3.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，限流关闭，下载暂存使用内存", zap.Error(err))
		rdb = nil
	}

	// 5. 存储后端：提供方配置与导出文件暂存
	var settingsRepo repository.SettingsRepository
	switch {
	case cfg.Settings.Backend == "redis" && rdb != nil:
		settingsRepo = repository.NewRedisSettingsRepo(rdb)
	case cfg.Settings.Backend == "redis":
		logger.Warn("settings.backend=redis 但 Redis 不可用，改用文件存储", zap.String("dir", cfg.Settings.Dir))
		settingsRepo = repository.NewFileSettingsRepo(cfg.Settings.Dir)
	default:
		settingsRepo = repository.NewFileSettingsRepo(cfg.Settings.Dir)
	}

	var downloadRepo repository.DownloadRepository
	if rdb != nil {
		downloadRepo = repository.NewRedisDownloadRepo(rdb)
	} else {
		downloadRepo = repository.NewMemoryDownloadRepo()
	}

	// 6. 指标
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	// 7. 外部协作方
	collab := service.Collaborators{
		Ingestor: client.NewIngestionClient(&cfg.Services, m, logger.Named("ingestion")),
		Renderer: client.NewRenderingClient(&cfg.Services, logger.Named("rendering")),
	}
	if cfg.LLM.Mode == "direct" {
		collab.Generator = client.NewLLMGenerator(&cfg.LLM, &cfg.Services, logger.Named("llm"))
	} else {
		collab.Generator = client.NewTextGenClient(&cfg.Services, logger.Named("textgen"))
	}
	if cfg.SFTP.Enabled {
		collab.Publisher = sftp.NewUploader(cfg.SFTP, logger.Named("sftp"))
	}

	// 8. 依赖注入: Repository → Service → Handler
	jwtMgr := jwt.NewManager(&cfg.Downloads)
	repo := repository.NewRepository(db, settingsRepo, downloadRepo)
	svc := service.NewService(cfg, repo, collab, jwtMgr, m, logger)

	loadCtx, loadCancel := context.WithTimeout(context.Background(), 5*time.Second)
	provider := svc.Providers.Load(loadCtx)
	loadCancel()
	logger.Info("提供方配置已加载",
		zap.String("endpoint", provider.EndpointURL),
		zap.String("model", provider.Model),
		zap.Bool("has_key", provider.HasCredential()),
	)

	h := handler.NewHandler(svc, cfg.Server.MaxUploadMB<<20)

	// 9. 初始化路由
	engine := router.Setup(cfg, h, rdb, m, logger)

	// 10. 启动 HTTP 服务器（优雅关闭）
	// 写超时需覆盖协作服务调用，批量生成按分轮计算
	writeTimeout := service.RequestTimeout(cfg.Services.Timeout)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 11. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 停止会话清理
	svc.Wizard.Stop()

	// 关闭数据库连接
	if sqlDB != nil {
		sqlDB.Close()
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
