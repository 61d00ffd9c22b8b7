package app

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shirasaka-flower/line-gateway/internal/config"
	"github.com/shirasaka-flower/line-gateway/internal/lineclient/lineclienttest"
	"github.com/shirasaka-flower/line-gateway/internal/logger"
	"github.com/shirasaka-flower/line-gateway/internal/webhook"
)

func testConfig() *config.Config {
	return &config.Config{
		LineChannelToken:  "token",
		LineChannelSecret: "secret",
		AdminIDs:          []string{"U_A", "U_B"},
		LIFFID:            "1234-abcd",
		PaymentLinks:      map[string]string{"5500": "https://square.link/u/5500"},
		MetricsUsername:   "prometheus",
		Port:              "10000",
		LogLevel:          "error",
		ShutdownTimeout:   config.GracefulShutdown,
		Webhook: config.WebhookConfig{
			MaxEventsPerWebhook: config.LINEMaxEventsPerWebhook,
			EventTimeout:        config.WebhookEvent,
		},
	}
}

func newTestApp(t *testing.T, cfg *config.Config, sender *lineclienttest.Recorder) *Application {
	t.Helper()
	deps := Dependencies{Logger: logger.NewWithWriter("error", io.Discard)}
	if sender != nil {
		deps.Sender = sender
	}
	app, err := New(cfg, deps)
	require.NoError(t, err)
	return app
}

func do(app *Application, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	app.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

func TestLivenessCheck(t *testing.T) {
	cfg := testConfig()
	cfg.LineChannelToken = ""
	app := newTestApp(t, cfg, nil)

	for _, method := range []string{http.MethodGet, http.MethodHead} {
		w := do(app, httptest.NewRequest(method, "/livez", nil))
		assert.Equal(t, http.StatusOK, w.Code, method)
	}
	w := do(app, httptest.NewRequest(http.MethodGet, "/livez", nil))
	assert.Equal(t, "alive", decode(t, w)["status"])
}

func TestReadinessCheck(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		app := newTestApp(t, testConfig(), &lineclienttest.Recorder{})
		w := do(app, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, "ready", body["status"])
		features, ok := body["features"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, true, features["webhook"])
		assert.Equal(t, true, features["liff_order_form"])
		assert.Equal(t, false, features["strict_validation"])
	})

	t.Run("missing token", func(t *testing.T) {
		cfg := testConfig()
		cfg.LineChannelToken = ""
		app := newTestApp(t, cfg, nil)
		w := do(app, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "channel access token not configured", decode(t, w)["reason"])
	})

	t.Run("missing admins", func(t *testing.T) {
		cfg := testConfig()
		cfg.AdminIDs = nil
		app := newTestApp(t, cfg, &lineclienttest.Recorder{})
		w := do(app, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "admin user id not configured", decode(t, w)["reason"])
	})
}

func TestMetricsEndpoint(t *testing.T) {
	cfg := testConfig()
	cfg.MetricsPassword = "s3cret"
	app := newTestApp(t, cfg, &lineclienttest.Recorder{})

	w := do(app, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.SetBasicAuth("prometheus", "s3cret")
	w = do(app, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestNotifyRoute(t *testing.T) {
	rec := &lineclienttest.Recorder{}
	app := newTestApp(t, testConfig(), rec)

	body := `{"name":"白坂 花子","budget":"5500","paymentMethod":"credit","orderType":"delivery","region":"takamatsu","productType":"bouquet"}`
	req := httptest.NewRequest(http.MethodPost, "/api/notify", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := do(app, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"success": true, "paymentUrl": "https://square.link/u/5500"}, decode(t, w))

	calls := rec.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"U_A", "U_B"}, calls[0].To)
}

func TestNotifyRoute_MissingToken(t *testing.T) {
	cfg := testConfig()
	cfg.LineChannelToken = ""
	app := newTestApp(t, cfg, nil)

	w := do(app, httptest.NewRequest(http.MethodPost, "/api/notify", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Server configuration error: Missing Token", decode(t, w)["error"])
}

func TestWebhookRoute(t *testing.T) {
	rec := &lineclienttest.Recorder{}
	app := newTestApp(t, testConfig(), rec)

	body := `{"destination":"Ubot","events":[{"type":"message","replyToken":"R","message":{"type":"text","text":"よくある質問"}}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/webhook", strings.NewReader(body))
	req.Header.Set(webhook.SignatureHeader, webhook.Sign("secret", []byte(body)))
	w := do(app, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"status": "success"}, decode(t, w))
	calls := rec.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "R", calls[0].ReplyToken)
}

func TestWebhookRoute_CatalogUsesLIFFURL(t *testing.T) {
	rec := &lineclienttest.Recorder{}
	app := newTestApp(t, testConfig(), rec)

	body := `{"events":[{"type":"message","replyToken":"R","message":{"type":"text","text":"カタログ"}}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/webhook", strings.NewReader(body))
	req.Header.Set(webhook.SignatureHeader, webhook.Sign("secret", []byte(body)))
	w := do(app, req)

	require.Equal(t, http.StatusOK, w.Code)
	calls := rec.Calls()
	require.Len(t, calls, 1)
	raw, err := json.Marshal(calls[0].Messages[0])
	require.NoError(t, err)
	assert.Contains(t, string(raw), "https://liff.line.me/1234-abcd/order")
}

func TestWebhookRoute_NoTokenFailsMatchedIntent(t *testing.T) {
	cfg := testConfig()
	cfg.LineChannelToken = ""
	app := newTestApp(t, cfg, nil)

	body := `{"events":[{"type":"message","replyToken":"R","message":{"type":"text","text":"カタログ"}}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/webhook", strings.NewReader(body))
	req.Header.Set(webhook.SignatureHeader, webhook.Sign("secret", []byte(body)))
	w := do(app, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal Server Error", decode(t, w)["error"])
}

func TestMiddleware_Headers(t *testing.T) {
	app := newTestApp(t, testConfig(), &lineclienttest.Recorder{})

	w := do(app, httptest.NewRequest(http.MethodGet, "/livez", nil))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/livez", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w = do(app, req)
	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
}

func TestUnknownRoute(t *testing.T) {
	app := newTestApp(t, testConfig(), &lineclienttest.Recorder{})
	w := do(app, httptest.NewRequest(http.MethodGet, "/api/notify", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
