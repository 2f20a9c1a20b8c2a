// Package metrics Prometheus 指标
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 服务指标集合
// 使用独立 Registry，便于测试中多次创建
type Metrics struct {
	registry *prometheus.Registry

	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	collaborator   *prometheus.HistogramVec
	generations    *prometheus.CounterVec
	activeSessions prometheus.Gauge
	exports        *prometheus.CounterVec
}

// New 创建并注册全部指标
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "syllabus",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "syllabus",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		collaborator: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "syllabus",
			Name:      "collaborator_call_duration_seconds",
			Help:      "Latency of calls to ingestion, generation and rendering services.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"service", "outcome"}),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "syllabus",
			Name:      "field_generations_total",
			Help:      "AI field generations by field and outcome.",
		}, []string{"field", "outcome"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "syllabus",
			Name:      "wizard_sessions_active",
			Help:      "Wizard sessions currently held in memory.",
		}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "syllabus",
			Name:      "exports_total",
			Help:      "Exports by format and outcome.",
		}, []string{"format", "outcome"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests, m.httpDuration, m.collaborator,
		m.generations, m.activeSessions, m.exports,
	)
	return m
}

// Handler /metrics 处理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry 暴露给测试
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveHTTP 记录一次 HTTP 请求
func (m *Metrics) ObserveHTTP(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

// ObserveCollaborator 记录一次协作服务调用
func (m *Metrics) ObserveCollaborator(service string, err error, d time.Duration) {
	if m == nil {
		return
	}
	m.collaborator.WithLabelValues(service, outcome(err)).Observe(d.Seconds())
}

// IncGeneration 记录一次字段生成
func (m *Metrics) IncGeneration(field string, err error) {
	if m == nil {
		return
	}
	m.generations.WithLabelValues(field, outcome(err)).Inc()
}

// IncExport 记录一次导出
func (m *Metrics) IncExport(format string, err error) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(format, outcome(err)).Inc()
}

// SetActiveSessions 当前会话数
func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
