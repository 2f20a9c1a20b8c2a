package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/moondec/syllabus/config"
	"github.com/moondec/syllabus/internal/model"
	apperrors "github.com/moondec/syllabus/pkg/errors"
	"github.com/moondec/syllabus/pkg/httpx"
)

// missingKeyMarker 生成服务在缺少凭据时返回的消息前缀
const missingKeyMarker = "Brak klucza API"

// TextGenClient 文本生成服务客户端
type TextGenClient struct {
	url    string
	http   *http.Client
	retry  httpx.RetryConfig
	logger *zap.Logger
}

// NewTextGenClient 创建文本生成客户端
func NewTextGenClient(cfg *config.ServicesConfig, logger *zap.Logger) *TextGenClient {
	return &TextGenClient{
		url:    cfg.TextGenerationURL,
		http:   newHTTPClient(cfg.Timeout),
		retry:  retryConfig(cfg),
		logger: logger,
	}
}

type textGenResponse struct {
	GeneratedText string `json:"generated_text"`
	Error         string `json:"error"`
}

// GenerateField 请求生成单个字段
// 服务返回 {error}（无论状态码）时原文作为 ServiceError；缺少凭据额外包装 ErrMissingCredential
func (c *TextGenClient) GenerateField(ctx context.Context, req model.GenerationRequest) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	var out textGenResponse
	err = httpx.DoJSON(ctx, c.http, func(ctx context.Context) (*http.Request, error) {
		r, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		r.Header.Set("Content-Type", contentTypeJSON)
		r.Header.Set("Accept", contentTypeJSON)
		return r, nil
	}, &out, c.retry)
	if err != nil {
		var herr *httpx.HTTPError
		if errors.As(err, &herr) {
			return "", credentialAware(classify(ServiceTextGeneration, err))
		}
		return "", apperrors.NewTransportError(ServiceTextGeneration, err)
	}

	if msg := strings.TrimSpace(out.Error); msg != "" {
		return "", credentialAware(apperrors.NewServiceError(ServiceTextGeneration, http.StatusOK, msg))
	}
	return out.GeneratedText, nil
}

// credentialAware 缺少凭据的服务端消息同时匹配 ErrMissingCredential
func credentialAware(err error) error {
	var se *apperrors.ServiceError
	if errors.As(err, &se) && strings.HasPrefix(se.Message, missingKeyMarker) {
		return fmt.Errorf("%w: %w", apperrors.ErrMissingCredential, err)
	}
	return err
}
