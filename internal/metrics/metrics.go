package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// LINE Messaging API metrics
	LineAPIRequestsTotal   *prometheus.CounterVec
	LineAPIDurationSeconds *prometheus.HistogramVec

	// Order notification metrics
	NotifyRequestsTotal *prometheus.CounterVec

	// Webhook metrics
	WebhookDurationSeconds *prometheus.HistogramVec
	WebhookEventsTotal     *prometheus.CounterVec
	WebhookEventsDropped   prometheus.Counter

	// Intent metrics
	IntentMatchesTotal *prometheus.CounterVec

	// HTTP metrics
	HTTPErrorsTotal *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		LineAPIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_line_api_requests_total",
				Help: "Total number of LINE Messaging API calls by operation and status",
			},
			[]string{"operation", "status"}, // operation: push, multicast, reply
		),

		LineAPIDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gateway_line_api_duration_seconds",
				Help:    "LINE Messaging API call duration in seconds by operation",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"operation"},
		),

		NotifyRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_notify_requests_total",
				Help: "Total number of order notifications by outcome",
			},
			[]string{"outcome"}, // outcome: sent, config_error, bad_request, invalid, send_error
		),

		WebhookDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gateway_webhook_duration_seconds",
				Help:    "Webhook event processing duration in seconds by event type",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"event_type"},
		),

		WebhookEventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_webhook_events_total",
				Help: "Total number of webhook events by event type and status",
			},
			[]string{"event_type", "status"},
		),

		WebhookEventsDropped: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "gateway_webhook_events_dropped_total",
				Help: "Webhook events discarded because a delivery exceeded the per-request cap",
			},
		),

		IntentMatchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_intent_matches_total",
				Help: "Total number of text messages by matched intent",
			},
			[]string{"intent"}, // intent: catalog, faq, chat_support, none
		),

		HTTPErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_http_errors_total",
				Help: "Total HTTP errors by type and module",
			},
			[]string{"error_type", "module"}, // error_type: invalid_signature, missing_config, etc.
		),
	}
}

// RecordLineAPI records one outbound LINE API call
func (m *Metrics) RecordLineAPI(operation, status string, duration float64) {
	if m == nil {
		return
	}
	m.LineAPIRequestsTotal.WithLabelValues(operation, status).Inc()
	m.LineAPIDurationSeconds.WithLabelValues(operation).Observe(duration)
}

// RecordNotify records the outcome of one /api/notify request
func (m *Metrics) RecordNotify(outcome string) {
	if m == nil {
		return
	}
	m.NotifyRequestsTotal.WithLabelValues(outcome).Inc()
}

// RecordWebhook records a processed webhook event
func (m *Metrics) RecordWebhook(eventType, status string, duration float64) {
	if m == nil {
		return
	}
	m.WebhookEventsTotal.WithLabelValues(eventType, status).Inc()
	m.WebhookDurationSeconds.WithLabelValues(eventType).Observe(duration)
}

// RecordWebhookDropped records events cut off by the per-delivery cap
func (m *Metrics) RecordWebhookDropped(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.WebhookEventsDropped.Add(float64(n))
}

// RecordIntent records a matched intent
func (m *Metrics) RecordIntent(intent string) {
	if m == nil {
		return
	}
	m.IntentMatchesTotal.WithLabelValues(intent).Inc()
}

// RecordHTTPError records HTTP error metrics
func (m *Metrics) RecordHTTPError(errorType, module string) {
	if m == nil {
		return
	}
	m.HTTPErrorsTotal.WithLabelValues(errorType, module).Inc()
}
