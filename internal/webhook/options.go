package webhook

import (
	"time"

	"github.com/shirasaka-flower/line-gateway/internal/config"
	"github.com/shirasaka-flower/line-gateway/internal/logger"
	"github.com/shirasaka-flower/line-gateway/internal/metrics"
)

// HandlerOption is a functional option for configuring Handler.
type HandlerOption func(*Handler)

// WithWebhookConfig applies the delivery limits from config.
func WithWebhookConfig(cfg config.WebhookConfig) HandlerOption {
	return func(h *Handler) {
		h.maxEventsPerWebhook = cfg.MaxEventsPerWebhook
		h.eventTimeout = cfg.EventTimeout
	}
}

// WithMaxEvents caps the events processed from one delivery.
func WithMaxEvents(n int) HandlerOption {
	return func(h *Handler) {
		h.maxEventsPerWebhook = n
	}
}

// WithEventTimeout bounds processing of a single event.
func WithEventTimeout(timeout time.Duration) HandlerOption {
	return func(h *Handler) {
		h.eventTimeout = timeout
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) HandlerOption {
	return func(h *Handler) {
		h.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = l
	}
}
