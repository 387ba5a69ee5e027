// Package metrics định nghĩa các Prometheus metric của server.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
)

// Kết quả của một lượt chat relay
const (
	ChatResultOK           = "ok"
	ChatResultRejected     = "rejected"
	ChatResultUpstreamFail = "upstream_error"
	ChatResultCanceled     = "canceled"
)

// Metrics chứa tất cả metric
type Metrics struct {
	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Chat relay
	ChatMessagesTotal   *prometheus.CounterVec
	ChatStreamDuration  prometheus.Histogram
	LLMTokensTotal      *prometheus.CounterVec
	TokenLimitRejection prometheus.Counter

	// Subscription worker
	SubscriptionsProcessedTotal *prometheus.CounterVec
	WorkerRunsTotal             *prometheus.CounterVec
}

// NewMetrics tạo và đăng ký metric vào registry
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "talking_menu_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "talking_menu_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		ChatMessagesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "talking_menu_chat_messages_total",
				Help: "Diner messages handled by the chat relay",
			},
			[]string{"result"},
		),
		ChatStreamDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "talking_menu_chat_stream_duration_seconds",
				Help:    "Duration of streamed LLM replies",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
			},
		),
		LLMTokensTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "talking_menu_llm_tokens_total",
				Help: "Tokens reported by the LLM provider",
			},
			[]string{"kind"},
		),
		TokenLimitRejection: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "talking_menu_token_limit_rejections_total",
				Help: "Chat messages refused because the monthly token limit was reached",
			},
		),
		SubscriptionsProcessedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "talking_menu_subscriptions_processed_total",
				Help: "Subscriptions expired or renewed by the worker",
			},
			[]string{"action"},
		),
		WorkerRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "talking_menu_worker_runs_total",
				Help: "Background worker runs",
			},
			[]string{"worker", "status"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ChatMessagesTotal,
		m.ChatStreamDuration,
		m.LLMTokensTotal,
		m.TokenLimitRejection,
		m.SubscriptionsProcessedTotal,
		m.WorkerRunsTotal,
	)
	return m
}

// Middleware đếm request theo route pattern (không theo path thật để tránh bùng nổ label)
func (m *Metrics) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else if status < 400 {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		m.HTTPRequestsTotal.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

// ObserveTokens cộng token của một lượt trả lời
func (m *Metrics) ObserveTokens(prompt, completion int64) {
	if m == nil {
		return
	}
	m.LLMTokensTotal.WithLabelValues("prompt").Add(float64(prompt))
	m.LLMTokensTotal.WithLabelValues("completion").Add(float64(completion))
}

// ChatResult đếm một lượt chat theo kết quả
func (m *Metrics) ChatResult(result string) {
	if m == nil {
		return
	}
	m.ChatMessagesTotal.WithLabelValues(result).Inc()
}
