package client

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/moondec/syllabus/config"
	"github.com/moondec/syllabus/internal/model"
	apperrors "github.com/moondec/syllabus/pkg/errors"
	"github.com/moondec/syllabus/pkg/httpx"
	"github.com/moondec/syllabus/pkg/metrics"
)

// IngestionClient 文档抽取服务客户端
// POST multipart（字段 file），响应为单个记录对象或记录数组
type IngestionClient struct {
	url     string
	http    *http.Client
	retry   httpx.RetryConfig
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewIngestionClient 创建抽取客户端；m 可为 nil
func NewIngestionClient(cfg *config.ServicesConfig, m *metrics.Metrics, logger *zap.Logger) *IngestionClient {
	return &IngestionClient{
		url:     cfg.IngestionURL,
		http:    newHTTPClient(cfg.Timeout),
		retry:   retryConfig(cfg),
		metrics: m,
		logger:  logger,
	}
}

// Extract 上传文档并解析记录；空数组返回零条记录而非错误
func (c *IngestionClient) Extract(ctx context.Context, fileName string, content []byte) ([]*model.SyllabusRecord, error) {
	body, contentType, err := multipartFile(fileName, content)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	_, resp, err := httpx.DoWithRetry(ctx, c.http, func(ctx context.Context) (*http.Request, error) {
		r, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		r.Header.Set("Content-Type", contentType)
		r.Header.Set("Accept", contentTypeJSON)
		return r, nil
	}, c.retry)
	if err != nil {
		err = classify(ServiceIngestion, err)
		c.metrics.ObserveCollaborator(ServiceIngestion, err, time.Since(start))
		return nil, err
	}

	if msg := serviceMessage(resp); msg != "" {
		err = apperrors.NewServiceError(ServiceIngestion, http.StatusOK, msg)
		c.metrics.ObserveCollaborator(ServiceIngestion, err, time.Since(start))
		return nil, err
	}

	records, err := model.DecodeRecords(resp)
	if err != nil {
		err = apperrors.NewTransportError(ServiceIngestion, fmt.Errorf("decode records: %w body=%s", err, httpx.Snippet(resp, 256)))
		c.metrics.ObserveCollaborator(ServiceIngestion, err, time.Since(start))
		return nil, err
	}
	c.metrics.ObserveCollaborator(ServiceIngestion, nil, time.Since(start))

	c.logger.Debug("抽取服务返回",
		zap.String("file", fileName),
		zap.Int("records", len(records)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return records, nil
}

func multipartFile(fileName string, content []byte) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", fileName)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(content); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
