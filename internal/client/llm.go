package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/moondec/syllabus/config"
	"github.com/moondec/syllabus/internal/model"
	apperrors "github.com/moondec/syllabus/pkg/errors"
)

const (
	serviceLLM = "llm"

	unauthorizedMessage = "Błąd autoryzacji: Nieprawidłowy klucz API."
	llmFailurePrefix    = "Wystąpił błąd podczas generowania tekstu: "
)

// LLMGenerator 直连 OpenAI 兼容端点生成文本（llm.mode=direct）
// 端点、模型与 API Key 均来自每次请求携带的提供方配置
type LLMGenerator struct {
	http        *http.Client
	defaults    model.ProviderConfig
	temperature float32
	maxTokens   int
	logger      *zap.Logger
}

// NewLLMGenerator 创建直连生成器
func NewLLMGenerator(llm *config.LLMConfig, services *config.ServicesConfig, logger *zap.Logger) *LLMGenerator {
	return &LLMGenerator{
		http:        newHTTPClient(services.Timeout),
		defaults:    model.ProviderConfig{EndpointURL: llm.DefaultEndpoint, Model: llm.DefaultModel},
		temperature: llm.Temperature,
		maxTokens:   llm.MaxTokens,
		logger:      logger,
	}
}

// GenerateField 实现 service.TextGenerator
func (g *LLMGenerator) GenerateField(ctx context.Context, req model.GenerationRequest) (string, error) {
	cfg := g.effectiveConfig(req.ProviderConfig)
	if !cfg.HasCredential() {
		return "", apperrors.ErrMissingCredential
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = strings.TrimRight(cfg.EndpointURL, "/")
	oc.HTTPClient = g.http
	client := openai.NewClientWithConfig(oc)

	system, user := buildPrompts(req)
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	})
	if err != nil {
		return "", g.classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", apperrors.NewTransportError(serviceLLM, errors.New("empty choices"))
	}

	text := stripFences(resp.Choices[0].Message.Content)
	g.logger.Debug("LLM 生成完成",
		zap.String("field", req.FieldType),
		zap.String("model", cfg.Model),
		zap.Int("tokens", resp.Usage.TotalTokens),
	)
	return text, nil
}

// effectiveConfig 请求未带的端点 / 模型使用配置文件默认值
func (g *LLMGenerator) effectiveConfig(p *model.ProviderConfig) model.ProviderConfig {
	cfg := g.defaults
	if p != nil {
		if v := strings.TrimSpace(p.EndpointURL); v != "" {
			cfg.EndpointURL = v
		}
		if v := strings.TrimSpace(p.Model); v != "" {
			cfg.Model = v
		}
		cfg.APIKey = strings.TrimSpace(p.APIKey)
	}
	if cfg.EndpointURL == "" {
		cfg.EndpointURL = model.DefaultProviderEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = model.DefaultProviderModel
	}
	return cfg
}

// classify 401 → 授权错误；API 其他错误 → 带原文的服务错误；网络层 → 连接错误
func (g *LLMGenerator) classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusUnauthorized {
			return apperrors.NewServiceError(serviceLLM, apiErr.HTTPStatusCode, unauthorizedMessage)
		}
		return apperrors.NewServiceError(serviceLLM, apiErr.HTTPStatusCode, llmFailurePrefix+apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode == http.StatusUnauthorized {
			return apperrors.NewServiceError(serviceLLM, reqErr.HTTPStatusCode, unauthorizedMessage)
		}
		return apperrors.NewTransportError(serviceLLM, fmt.Errorf("status %d: %w", reqErr.HTTPStatusCode, err))
	}
	return apperrors.NewTransportError(serviceLLM, err)
}
