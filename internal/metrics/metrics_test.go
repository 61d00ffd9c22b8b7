package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNew(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	if m == nil {
		t.Fatal("New() returned nil")
	}
	if m.LineAPIRequestsTotal == nil || m.LineAPIDurationSeconds == nil {
		t.Error("LINE API metrics are nil")
	}
	if m.NotifyRequestsTotal == nil {
		t.Error("NotifyRequestsTotal is nil")
	}
	if m.WebhookEventsTotal == nil || m.WebhookDurationSeconds == nil || m.WebhookEventsDropped == nil {
		t.Error("webhook metrics are nil")
	}
	if m.IntentMatchesTotal == nil {
		t.Error("IntentMatchesTotal is nil")
	}
	if m.HTTPErrorsTotal == nil {
		t.Error("HTTPErrorsTotal is nil")
	}
}

func TestRecordLineAPI(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordLineAPI("multicast", StatusSuccess, 0.2)
	m.RecordLineAPI("multicast", StatusSuccess, 0.3)
	m.RecordLineAPI("reply", StatusError, 1.1)

	if got := testutil.ToFloat64(m.LineAPIRequestsTotal.WithLabelValues("multicast", StatusSuccess)); got != 2 {
		t.Errorf("expected 2 successful multicasts, got %v", got)
	}
	if got := testutil.ToFloat64(m.LineAPIRequestsTotal.WithLabelValues("reply", StatusError)); got != 1 {
		t.Errorf("expected 1 failed reply, got %v", got)
	}
}

func TestRecordWebhook(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordWebhook("message", StatusSuccess, 0.05)
	m.RecordWebhookDropped(3)
	m.RecordWebhookDropped(0)

	if got := testutil.ToFloat64(m.WebhookEventsTotal.WithLabelValues("message", StatusSuccess)); got != 1 {
		t.Errorf("expected 1 event, got %v", got)
	}
	if got := testutil.ToFloat64(m.WebhookEventsDropped); got != 3 {
		t.Errorf("expected 3 dropped, got %v", got)
	}
}

func TestRecordNotifyAndIntent(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordNotify("sent")
	m.RecordIntent("catalog")
	m.RecordHTTPError("invalid_signature", "webhook")

	if got := testutil.ToFloat64(m.NotifyRequestsTotal.WithLabelValues("sent")); got != 1 {
		t.Errorf("expected 1, got %v", got)
	}
	if got := testutil.ToFloat64(m.IntentMatchesTotal.WithLabelValues("catalog")); got != 1 {
		t.Errorf("expected 1, got %v", got)
	}
	if got := testutil.ToFloat64(m.HTTPErrorsTotal.WithLabelValues("invalid_signature", "webhook")); got != 1 {
		t.Errorf("expected 1, got %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordLineAPI("push", StatusSuccess, 0.1)
	m.RecordNotify("sent")
	m.RecordWebhook("follow", StatusSuccess, 0.1)
	m.RecordWebhookDropped(1)
	m.RecordIntent("none")
	m.RecordHTTPError("x", "y")
}
