package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func fastRetry(attempts int) RetryConfig {
	cfg := DefaultRetryConfig()
	cfg.MaxAttempts = attempts
	cfg.BaseDelay = time.Millisecond
	cfg.MaxDelay = 5 * time.Millisecond
	return cfg
}

func getReq(url string) func(context.Context) (*http.Request, error) {
	return func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	}
}

func TestDoWithRetry_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	resp, body, err := DoWithRetry(context.Background(), srv.Client(), getReq(srv.URL), fastRetry(3))
	if err != nil {
		t.Fatalf("不应出错: %v", err)
	}
	if resp.StatusCode != http.StatusOK || string(body) != `{"ok":true}` {
		t.Errorf("响应不符: status=%d body=%s", resp.StatusCode, body)
	}
}

func TestDoWithRetry_RetriesRetryableStatus(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("done"))
	}))
	defer srv.Close()

	_, body, err := DoWithRetry(context.Background(), srv.Client(), getReq(srv.URL), fastRetry(3))
	if err != nil {
		t.Fatalf("重试后应成功: %v", err)
	}
	if string(body) != "done" {
		t.Errorf("期望 body=done，实际=%s", body)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("期望调用 2 次，实际=%d", calls)
	}
}

func TestDoWithRetry_NonRetryableStatusReturnsHTTPError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"zły plik"}`))
	}))
	defer srv.Close()

	_, body, err := DoWithRetry(context.Background(), srv.Client(), getReq(srv.URL), fastRetry(3))
	var herr *HTTPError
	if !errors.As(err, &herr) {
		t.Fatalf("期望 HTTPError，实际=%v", err)
	}
	if herr.StatusCode != http.StatusBadRequest {
		t.Errorf("期望 400，实际=%d", herr.StatusCode)
	}
	if string(body) != `{"error":"zły plik"}` {
		t.Errorf("错误响应体应返回给调用方，实际=%s", body)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("400 不应重试，实际调用 %d 次", calls)
	}
}

func TestDoWithRetry_MaxAttemptsExceeded(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, _, err := DoWithRetry(context.Background(), srv.Client(), getReq(srv.URL), fastRetry(2))
	var herr *HTTPError
	if !errors.As(err, &herr) || herr.StatusCode != http.StatusBadGateway {
		t.Fatalf("期望 502 HTTPError，实际=%v", err)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("期望调用 2 次，实际=%d", calls)
	}
}

func TestDoWithRetry_BuildReqError(t *testing.T) {
	build := func(context.Context) (*http.Request, error) { return nil, errors.New("build failed") }
	if _, _, err := DoWithRetry(context.Background(), http.DefaultClient, build, fastRetry(3)); err == nil {
		t.Fatal("构造请求失败应返回错误")
	}
}

func TestDoJSON_Decodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"generated_text":"abc"}`))
	}))
	defer srv.Close()

	var out struct {
		GeneratedText string `json:"generated_text"`
	}
	if err := DoJSON(context.Background(), srv.Client(), getReq(srv.URL), &out, fastRetry(1)); err != nil {
		t.Fatalf("不应出错: %v", err)
	}
	if out.GeneratedText != "abc" {
		t.Errorf("期望 abc，实际=%s", out.GeneratedText)
	}
}

func TestDoJSON_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	var out map[string]any
	if err := DoJSON(context.Background(), srv.Client(), getReq(srv.URL), &out, fastRetry(1)); err == nil {
		t.Fatal("非 JSON 响应应返回错误")
	}
}

func TestParseRetryAfter(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	if d := ParseRetryAfter(resp); d != 0 {
		t.Errorf("无头部应返回 0，实际=%v", d)
	}
	resp.Header.Set("Retry-After", "3")
	if d := ParseRetryAfter(resp); d != 3*time.Second {
		t.Errorf("期望 3s，实际=%v", d)
	}
	resp.Header.Set("Retry-After", "soon")
	if d := ParseRetryAfter(resp); d != 0 {
		t.Errorf("无效值应返回 0，实际=%v", d)
	}
}

func TestIsRetryableNetErr(t *testing.T) {
	cases := map[string]bool{
		"connection reset by peer": true,
		"write: broken pipe":       true,
		"unexpected EOF":           true,
		"no such host":             false,
	}
	for msg, want := range cases {
		if got := isRetryableNetErr(errors.New(msg)); got != want {
			t.Errorf("%q: 期望 %v，实际 %v", msg, want, got)
		}
	}
	if isRetryableNetErr(context.Canceled) {
		t.Error("context.Canceled 不应重试")
	}
}
