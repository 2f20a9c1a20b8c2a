package service

import (
	"go.uber.org/zap"

	"github.com/moondec/syllabus/config"
	"github.com/moondec/syllabus/internal/model"
	"github.com/moondec/syllabus/internal/repository"
	"github.com/moondec/syllabus/pkg/jwt"
	"github.com/moondec/syllabus/pkg/metrics"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Wizard    WizardService
	Export    ExportService
	Archive   ArchiveService
	Providers ProviderConfigService
}

// Collaborators 外部协作方，由 cmd 按配置装配
type Collaborators struct {
	Ingestor  DocumentIngestor
	Generator TextGenerator
	Renderer  DocumentRenderer
	// Publisher 可为 nil（未启用 SFTP）
	Publisher DocumentPublisher
}

// NewService 创建 Service 聚合
// 调用方负责在启动时执行 Providers.Load 以及退出时 Wizard.Stop
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	collab Collaborators,
	jwtMgr *jwt.Manager,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Service {
	providers := NewProviderConfigService(repo.Settings, cfg.Settings.Key, model.ProviderConfig{
		EndpointURL: cfg.LLM.DefaultEndpoint,
		Model:       cfg.LLM.DefaultModel,
	}, logger.Named("settings"))

	archive := NewArchiveService(repo.Syllabus, cfg.Archive.LegalBasis, logger.Named("archive"))

	export := NewExportService(ExportDeps{
		Remote:    collab.Renderer,
		Archive:   archive,
		Downloads: repo.Downloads,
		Tokens:    jwtMgr,
		Publisher: collab.Publisher,
		BaseURL:   cfg.Server.BaseURL,
		Metrics:   m,
		Logger:    logger.Named("export"),
	})

	wizard := NewWizardService(WizardDeps{
		Ingestor:    collab.Ingestor,
		Gateway:     NewGenerationGateway(collab.Generator, logger.Named("generation"), m),
		Exporter:    export,
		Archive:     archive,
		Providers:   providers,
		Timeout:     cfg.Services.Timeout,
		SessionTTL:  cfg.Wizard.SessionTTL,
		MaxSessions: cfg.Wizard.MaxSessions,
		Metrics:     m,
		Logger:      logger.Named("wizard"),
	})

	return &Service{
		Wizard:    wizard,
		Export:    export,
		Archive:   archive,
		Providers: providers,
	}
}
