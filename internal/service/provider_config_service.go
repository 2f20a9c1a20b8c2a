package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/moondec/syllabus/internal/model"
	"github.com/moondec/syllabus/internal/repository"
)

// ProviderConfigService 提供方配置存储
//
// 生命周期：启动时 Load 一次；之后只能经 Save 修改，每次修改整体持久化。
// 读取方（生成网关）只拿到 Current 返回的副本。
type ProviderConfigService interface {
	Load(ctx context.Context) model.ProviderConfig
	Save(ctx context.Context, cfg model.ProviderConfig) model.ProviderConfig
	Current() model.ProviderConfig
}

type providerConfigService struct {
	repo     repository.SettingsRepository
	key      string
	defaults model.ProviderConfig
	logger   *zap.Logger

	mu      sync.RWMutex
	current model.ProviderConfig
}

// NewProviderConfigService 创建配置存储；defaults 为空字段时使用内置默认值
func NewProviderConfigService(
	repo repository.SettingsRepository,
	key string,
	defaults model.ProviderConfig,
	logger *zap.Logger,
) ProviderConfigService {
	builtin := model.DefaultProviderConfig()
	if defaults.EndpointURL == "" {
		defaults.EndpointURL = builtin.EndpointURL
	}
	if defaults.Model == "" {
		defaults.Model = builtin.Model
	}
	return &providerConfigService{
		repo:     repo,
		key:      key,
		defaults: defaults,
		logger:   logger,
		current:  defaults,
	}
}

// Load 读取持久化配置；不存在或解析失败时回退默认值，不向调用方报错
func (s *providerConfigService) Load(ctx context.Context) model.ProviderConfig {
	cfg := s.defaults

	data, err := s.repo.Load(ctx, s.key)
	switch {
	case errors.Is(err, repository.ErrSettingsNotFound):
		s.logger.Info("未找到提供方配置，使用默认值", zap.String("key", s.key))
	case err != nil:
		s.logger.Warn("读取提供方配置失败，使用默认值", zap.String("key", s.key), zap.Error(err))
	default:
		var stored model.ProviderConfig
		if err := json.Unmarshal(data, &stored); err != nil {
			s.logger.Warn("提供方配置格式无效，使用默认值", zap.String("key", s.key), zap.Error(err))
		} else {
			cfg = stored
		}
	}

	s.mu.Lock()
	s.current = cfg
	s.mu.Unlock()
	return cfg
}

// Save 替换内存中的配置并整体持久化
// 持久化失败只记录日志，调用方始终视为成功
func (s *providerConfigService) Save(ctx context.Context, cfg model.ProviderConfig) model.ProviderConfig {
	s.mu.Lock()
	s.current = cfg
	s.mu.Unlock()

	data, err := json.Marshal(cfg)
	if err != nil {
		s.logger.Error("序列化提供方配置失败", zap.Error(err))
		return cfg
	}
	if err := s.repo.Save(ctx, s.key, data); err != nil {
		s.logger.Error("持久化提供方配置失败", zap.String("key", s.key), zap.Error(err))
		return cfg
	}

	s.logger.Info("提供方配置已保存",
		zap.String("endpoint", cfg.EndpointURL),
		zap.String("model", cfg.Model),
		zap.Bool("has_key", cfg.HasCredential()),
	)
	return cfg
}

// Current 当前配置副本
func (s *providerConfigService) Current() model.ProviderConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}
