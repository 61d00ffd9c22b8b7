// Package webhook verifies LINE webhook deliveries and dispatches their
// events concurrently.
package webhook

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/shirasaka-flower/line-gateway/internal/config"
	"github.com/shirasaka-flower/line-gateway/internal/ctxutil"
	domerrors "github.com/shirasaka-flower/line-gateway/internal/errors"
	"github.com/shirasaka-flower/line-gateway/internal/event"
	"github.com/shirasaka-flower/line-gateway/internal/logger"
	"github.com/shirasaka-flower/line-gateway/internal/metrics"
	"github.com/shirasaka-flower/line-gateway/internal/sentry"
)

// SignatureHeader carries the body signature on every delivery.
const SignatureHeader = "x-line-signature"

// Client-facing error strings.
const (
	MsgMissingConfig    = "Missing config or signature"
	MsgInvalidSignature = "Invalid signature"
	MsgInternal         = "Internal Server Error"
)

// EventHandler processes a single webhook event.
type EventHandler interface {
	Handle(ctx context.Context, ev event.Event) error
}

// HandlerFunc adapts a function to EventHandler.
type HandlerFunc func(ctx context.Context, ev event.Event) error

// Handle calls f(ctx, ev).
func (f HandlerFunc) Handle(ctx context.Context, ev event.Event) error {
	return f(ctx, ev)
}

// Handler handles LINE webhook events
type Handler struct {
	channelSecret string
	dispatcher    EventHandler
	metrics       *metrics.Metrics
	logger        *logger.Logger

	maxEventsPerWebhook int
	eventTimeout        time.Duration
}

// NewHandler creates a webhook handler. An empty channelSecret makes every
// delivery fail with 400.
func NewHandler(channelSecret string, dispatcher EventHandler, opts ...HandlerOption) *Handler {
	h := &Handler{
		channelSecret:       channelSecret,
		dispatcher:          dispatcher,
		maxEventsPerWebhook: config.LINEMaxEventsPerWebhook,
		eventTimeout:        config.WebhookEvent,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = logger.NewWithWriter("error", io.Discard)
	}
	h.logger = h.logger.WithModule("webhook")
	return h
}

// Handle is the Gin handler for the webhook endpoint. The body is read raw
// before any parsing so the signature covers the exact bytes received.
func (h *Handler) Handle(c *gin.Context) {
	ctx := c.Request.Context()

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.fail(c, "read_body", wrapper("read_body").Wrap(err, MsgInternal))
		return
	}

	signature := c.GetHeader(SignatureHeader)
	switch {
	case h.channelSecret == "":
		h.reject(c, "missing_config", wrapper("verify_signature").WrapStatus(domerrors.ErrMissingSecret, http.StatusBadRequest, MsgMissingConfig))
		return
	case signature == "":
		h.reject(c, "missing_signature", wrapper("verify_signature").WrapStatus(domerrors.ErrMissingSignature, http.StatusBadRequest, MsgMissingConfig))
		return
	case !VerifySignature(h.channelSecret, body, signature):
		h.reject(c, "invalid_signature", wrapper("verify_signature").WrapStatus(domerrors.ErrInvalidSignature, http.StatusUnauthorized, MsgInvalidSignature))
		return
	}

	envelope, err := event.Decode(body)
	if err != nil {
		h.fail(c, "malformed_body", wrapper("decode").Wrap(err, MsgInternal))
		return
	}

	events := envelope.Events
	if len(events) > h.maxEventsPerWebhook {
		h.logger.WithField("event_count", len(events)).
			WithField("limit", h.maxEventsPerWebhook).
			WarnContext(ctx, "Too many events in webhook batch; truncating")
		h.metrics.RecordWebhookDropped(len(events) - h.maxEventsPerWebhook)
		events = events[:h.maxEventsPerWebhook]
	}

	if err := h.dispatch(ctx, events); err != nil {
		h.fail(c, dispatchErrorType(err), wrapper("dispatch").Wrap(err, MsgInternal))
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// dispatch runs every event to completion and returns the first failure.
// Siblings are not canceled when one event fails.
func (h *Handler) dispatch(ctx context.Context, events []event.Event) error {
	base := ctxutil.PreserveTracing(ctx)

	var g errgroup.Group
	for _, ev := range events {
		g.Go(func() error {
			return h.processEvent(base, ev)
		})
	}
	return g.Wait()
}

// processEvent handles a single webhook event.
func (h *Handler) processEvent(ctx context.Context, ev event.Event) (err error) {
	start := time.Now()
	eventType := metricEventType(ev.Type)

	if ev.WebhookEventID != "" {
		ctx = ctxutil.WithEventID(ctx, ev.WebhookEventID)
	}
	if userID := ev.UserID(); userID != "" {
		ctx = ctxutil.WithUserID(ctx, userID)
	}
	if h.eventTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.eventTimeout)
		defer cancel()
	}

	log := h.logger.WithField("event_type", ev.Type)
	if ev.IsRedelivery() {
		log = log.WithField("is_redelivery", true)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic handling %s event: %v", ev.Type, r)
		}

		status := metrics.StatusSuccess
		if err != nil {
			status = metrics.StatusError
			log.WithError(err).ErrorContext(ctx, "Failed to handle event")
		}
		h.metrics.RecordWebhook(eventType, status, time.Since(start).Seconds())
	}()

	return h.dispatcher.Handle(ctx, ev)
}

func (h *Handler) reject(c *gin.Context, errorType string, err error) {
	h.metrics.RecordHTTPError(errorType, "webhook")
	h.logger.WithError(err).WarnContext(c.Request.Context(), "Rejected webhook delivery")
	h.respond(c, err)
}

func (h *Handler) fail(c *gin.Context, errorType string, err error) {
	ctx := c.Request.Context()
	h.metrics.RecordHTTPError(errorType, "webhook")
	h.logger.WithError(err).ErrorContext(ctx, "Webhook delivery failed")
	sentry.CaptureException(ctx, err, map[string]string{"module": "webhook", "error_type": errorType})
	h.respond(c, err)
}

func (h *Handler) respond(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(domerrors.StatusOf(err, http.StatusInternalServerError), gin.H{"error": domerrors.GetUserMessage(err)})
}

func dispatchErrorType(err error) string {
	switch {
	case domerrors.IsConfigError(err):
		return "missing_config"
	case domerrors.IsSendFailed(err):
		return "send_failed"
	default:
		return "event_failed"
	}
}

// metricEventType bounds the label set to the event types LINE documents.
func metricEventType(t string) string {
	switch t {
	case event.TypeMessage, event.TypeFollow, event.TypeUnfollow, event.TypePostback,
		"join", "leave", "memberJoined", "memberLeft", "beacon", "accountLink", "things", "videoPlayComplete", "unsend":
		return t
	default:
		return "other"
	}
}

func wrapper(operation string) *domerrors.ErrorWrapper {
	return domerrors.NewWrapper("webhook", operation)
}
