// Package notify handles order form submissions and forwards them to the
// shop administrators over LINE.
package notify

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/shirasaka-flower/line-gateway/internal/ctxutil"
	domerrors "github.com/shirasaka-flower/line-gateway/internal/errors"
	"github.com/shirasaka-flower/line-gateway/internal/lineclient"
	"github.com/shirasaka-flower/line-gateway/internal/logger"
	"github.com/shirasaka-flower/line-gateway/internal/metrics"
	"github.com/shirasaka-flower/line-gateway/internal/order"
	"github.com/shirasaka-flower/line-gateway/internal/sentry"
)

// Client-facing error strings.
const (
	MsgMissingToken   = "Server configuration error: Missing Token"
	MsgMissingAdminID = "Server configuration error: Missing Admin ID"
	MsgSendFailed     = "Failed to send notification"
	MsgInvalidOrder   = "Invalid order"
)

// Outcome label values for metrics.
const (
	outcomeSent        = "sent"
	outcomeConfigError = "config_error"
	outcomeBadRequest  = "bad_request"
	outcomeInvalid     = "invalid"
	outcomeSendError   = "send_error"
)

// Response is the success body.
type Response struct {
	Success    bool   `json:"success"`
	PaymentURL string `json:"paymentUrl,omitempty"`
}

// Handler serves POST /api/notify.
type Handler struct {
	sender       lineclient.Sender
	adminIDs     []string
	paymentLinks map[string]string
	validator    *order.Validator
	sendTimeout  time.Duration
	metrics      *metrics.Metrics
	logger       *logger.Logger
}

// HandlerConfig holds dependencies for NewHandler.
type HandlerConfig struct {
	// Sender is nil when no channel access token is configured.
	Sender       lineclient.Sender
	AdminIDs     []string
	PaymentLinks map[string]string
	// Validator enables strict validation when non-nil.
	Validator   *order.Validator
	SendTimeout time.Duration
	Metrics     *metrics.Metrics
	Logger      *logger.Logger
}

// NewHandler creates a notify handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		sender:       cfg.Sender,
		adminIDs:     cfg.AdminIDs,
		paymentLinks: cfg.PaymentLinks,
		validator:    cfg.Validator,
		sendTimeout:  cfg.SendTimeout,
		metrics:      cfg.Metrics,
		logger:       cfg.Logger.WithModule("notify"),
	}
}

// Handle is the gin handler for the notify endpoint.
func (h *Handler) Handle(c *gin.Context) {
	ctx := c.Request.Context()

	// The token check comes before the body is read.
	if h.sender == nil {
		h.fail(c, outcomeConfigError, wrapper("check_config").Wrap(domerrors.ErrMissingToken, MsgMissingToken))
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.fail(c, outcomeBadRequest, wrapper("read_body").Wrap(err, MsgSendFailed))
		return
	}
	sub, err := order.Decode(body)
	if err != nil {
		h.fail(c, outcomeBadRequest, wrapper("decode").Wrap(err, MsgSendFailed))
		return
	}

	if len(h.adminIDs) == 0 {
		h.fail(c, outcomeConfigError, wrapper("check_config").Wrap(domerrors.ErrMissingAdminID, MsgMissingAdminID))
		return
	}

	if h.validator != nil {
		if err := h.validator.Validate(sub); err != nil {
			var verrs domerrors.ValidationErrors
			if errors.As(err, &verrs) {
				h.metrics.RecordNotify(outcomeInvalid)
				h.logger.WithField("fields", verrs.FieldNames()).InfoContext(ctx, "Rejected invalid order")
				c.JSON(http.StatusBadRequest, gin.H{"error": MsgInvalidOrder, "fields": verrs.Fields()})
				return
			}
			h.fail(c, outcomeSendError, wrapper("validate").Wrap(err, MsgSendFailed))
			return
		}
	}

	text, err := sub.RenderNotification()
	if err != nil {
		h.fail(c, outcomeSendError, wrapper("render").Wrap(err, MsgSendFailed))
		return
	}

	sendCtx := ctxutil.PreserveTracing(ctx)
	if h.sendTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(sendCtx, h.sendTimeout)
		defer cancel()
	}
	// The order text goes out as rendered; LINE's length limit is enforced by
	// the sender, never by cutting the customer's message.
	if err := h.sender.Multicast(sendCtx, h.adminIDs, &messaging_api.TextMessage{Text: text}); err != nil {
		h.fail(c, outcomeSendError, wrapper(lineclient.OpMulticast).Wrap(err, MsgSendFailed))
		return
	}

	resp := Response{Success: true}
	if link, ok := sub.PaymentURL(h.paymentLinks); ok {
		resp.PaymentURL = link
	}

	h.metrics.RecordNotify(outcomeSent)
	h.logger.WithFields(map[string]any{
		"admins":       len(h.adminIDs),
		"order_type":   sub.OrderType.String(),
		"product_type": sub.ProductType.String(),
		"payment_link": resp.PaymentURL != "",
	}).InfoContext(ctx, "Order notification sent")
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) fail(c *gin.Context, outcome string, err error) {
	ctx := c.Request.Context()
	status := domerrors.StatusOf(err, http.StatusInternalServerError)

	h.metrics.RecordNotify(outcome)
	h.metrics.RecordHTTPError(outcome, "notify")
	h.logger.WithError(err).WithField("status", status).ErrorContext(ctx, "Order notification failed")
	sentry.CaptureException(ctx, err, map[string]string{"module": "notify", "outcome": outcome})

	_ = c.Error(err)
	c.JSON(status, gin.H{"error": domerrors.GetUserMessage(err)})
}

func wrapper(operation string) *domerrors.ErrorWrapper {
	return domerrors.NewWrapper("notify", operation)
}
