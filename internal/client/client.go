// Package client 外部协作服务（抽取 / 文本生成 / 渲染）的 HTTP 客户端
package client

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/moondec/syllabus/config"
	apperrors "github.com/moondec/syllabus/pkg/errors"
	"github.com/moondec/syllabus/pkg/httpx"
)

const (
	contentTypeJSON = "application/json"

	ServiceIngestion      = "ingestion"
	ServiceTextGeneration = "text_generation"
	ServiceRendering      = "rendering"
)

// newHTTPClient 协作调用都是长耗时请求；整体超时由调用方 context 控制
func newHTTPClient(timeout time.Duration) *http.Client {
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        50,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &http.Client{Timeout: timeout, Transport: tr}
}

func retryConfig(cfg *config.ServicesConfig) httpx.RetryConfig {
	return httpx.DefaultRetryConfig().WithAttempts(cfg.RetryAttempts)
}

// classify 将出站调用错误归入 ServiceError / TransportError
// 非 2xx 且带 {"error"} 的响应视为服务端校验错误，原文展示
func classify(service string, err error) error {
	var herr *httpx.HTTPError
	if errors.As(err, &herr) {
		if msg := serviceMessage(herr.Body); msg != "" {
			return apperrors.NewServiceError(service, herr.StatusCode, msg)
		}
	}
	return apperrors.NewTransportError(service, err)
}

// serviceMessage 从响应体提取 error 字段（FastAPI 的 detail 也接受）
func serviceMessage(body []byte) string {
	var e struct {
		Error  string `json:"error"`
		Detail any    `json:"detail"`
	}
	if json.Unmarshal(body, &e) != nil {
		return ""
	}
	if msg := strings.TrimSpace(e.Error); msg != "" {
		return msg
	}
	if s, ok := e.Detail.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}
