package client

import (
	"bytes"
	"context"
	"encoding/json"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/moondec/syllabus/config"
	"github.com/moondec/syllabus/internal/model"
	apperrors "github.com/moondec/syllabus/pkg/errors"
	"github.com/moondec/syllabus/pkg/httpx"
)

// RenderingClient 文档渲染服务客户端
//
// 请求：POST {rendering_url}?format=docx，JSON 记录（附 language）
// 响应两种形式：直接返回二进制文件，或 JSON {download_url} / {error}
type RenderingClient struct {
	url    string
	http   *http.Client
	retry  httpx.RetryConfig
	logger *zap.Logger
}

// NewRenderingClient 创建渲染客户端
func NewRenderingClient(cfg *config.ServicesConfig, logger *zap.Logger) *RenderingClient {
	return &RenderingClient{
		url:    cfg.RenderingURL,
		http:   newHTTPClient(cfg.Timeout),
		retry:  retryConfig(cfg),
		logger: logger,
	}
}

type renderResponse struct {
	DownloadURL string `json:"download_url"`
	Error       string `json:"error"`
}

// Render 渲染记录
func (c *RenderingClient) Render(ctx context.Context, rec *model.SyllabusRecord, lang model.Language, format string) (*model.RenderedDocument, error) {
	payload := rec.Clone()
	payload.Set(model.FieldLanguage, string(lang))
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	target, err := withFormat(c.url, format)
	if err != nil {
		return nil, err
	}

	resp, data, err := httpx.DoWithRetry(ctx, c.http, func(ctx context.Context) (*http.Request, error) {
		r, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		r.Header.Set("Content-Type", contentTypeJSON)
		return r, nil
	}, c.retry)
	if err != nil {
		return nil, classify(ServiceRendering, err)
	}

	ct := resp.Header.Get("Content-Type")
	if isJSON(ct) {
		var out renderResponse
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, apperrors.NewTransportError(ServiceRendering, err)
		}
		if msg := strings.TrimSpace(out.Error); msg != "" {
			return nil, apperrors.NewServiceError(ServiceRendering, resp.StatusCode, msg)
		}
		return &model.RenderedDocument{URL: c.resolve(out.DownloadURL)}, nil
	}

	c.logger.Debug("渲染服务返回文件", zap.String("format", format), zap.Int("bytes", len(data)))
	return &model.RenderedDocument{
		Content:     data,
		ContentType: ct,
		FileName:    attachmentName(resp.Header.Get("Content-Disposition")),
	}, nil
}

// resolve 相对下载地址按渲染服务地址补全
func (c *RenderingClient) resolve(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	base, err := url.Parse(c.url)
	if err != nil {
		return ref
	}
	u, err := base.Parse(ref)
	if err != nil {
		return ref
	}
	return u.String()
}

func withFormat(raw, format string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if format != "" {
		q := u.Query()
		q.Set("format", format)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && mt == contentTypeJSON
}

func attachmentName(disposition string) string {
	if disposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	return params["filename"]
}
