// Package intent maps inbound chat text to a canned reply and sends it.
package intent

import (
	"context"
	"fmt"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	domerrors "github.com/shirasaka-flower/line-gateway/internal/errors"
	"github.com/shirasaka-flower/line-gateway/internal/event"
	"github.com/shirasaka-flower/line-gateway/internal/lineclient"
	"github.com/shirasaka-flower/line-gateway/internal/logger"
	"github.com/shirasaka-flower/line-gateway/internal/metrics"
	"github.com/shirasaka-flower/line-gateway/internal/replies"
)

// Intent is the action a text message triggers.
type Intent int

const (
	None Intent = iota
	Catalog
	FAQ
	ChatSupport
)

// Trigger phrases. Matching is exact: no trimming or case folding.
const (
	TriggerCatalog     = "カタログ"
	TriggerFAQ         = "よくある質問"
	TriggerChatSupport = "個別相談をお願いします"
)

func (i Intent) String() string {
	switch i {
	case Catalog:
		return "catalog"
	case FAQ:
		return "faq"
	case ChatSupport:
		return "chat_support"
	default:
		return "none"
	}
}

// Match classifies text by exact equality with a trigger phrase.
func Match(text string) Intent {
	switch text {
	case TriggerCatalog:
		return Catalog
	case TriggerFAQ:
		return FAQ
	case TriggerChatSupport:
		return ChatSupport
	default:
		return None
	}
}

// Router replies to webhook events that carry a known trigger phrase.
type Router struct {
	sender       lineclient.Sender
	templates    *replies.Templates
	orderFormURL string
	timeout      time.Duration
	metrics      *metrics.Metrics
	logger       *logger.Logger
}

// RouterConfig holds dependencies for NewRouter.
type RouterConfig struct {
	// Sender is nil when no channel access token is configured; matched
	// intents then fail with ErrMissingToken.
	Sender       lineclient.Sender
	Templates    *replies.Templates
	OrderFormURL string
	// Timeout bounds the reply call; zero means no extra bound.
	Timeout time.Duration
	Metrics *metrics.Metrics
	Logger  *logger.Logger
}

// NewRouter creates a Router.
func NewRouter(cfg RouterConfig) *Router {
	return &Router{
		sender:       cfg.Sender,
		templates:    cfg.Templates,
		orderFormURL: cfg.OrderFormURL,
		timeout:      cfg.Timeout,
		metrics:      cfg.Metrics,
		logger:       cfg.Logger,
	}
}

// Handle replies to ev if it is a text message matching an intent. Other
// events and unmatched text are no-ops and return nil.
func (r *Router) Handle(ctx context.Context, ev event.Event) error {
	text, ok := ev.Text()
	if !ok {
		r.logger.WithField("event_type", ev.Type).DebugContext(ctx, "Ignoring non-text event")
		return nil
	}

	in := Match(text)
	r.metrics.RecordIntent(in.String())
	if in == None {
		return nil
	}

	if r.sender == nil {
		return fmt.Errorf("reply %s: %w", in, domerrors.ErrMissingToken)
	}

	msg := r.message(in)
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	if err := r.sender.Reply(ctx, ev.ReplyToken, msg); err != nil {
		return fmt.Errorf("reply %s: %w", in, err)
	}
	r.logger.WithField("intent", in.String()).InfoContext(ctx, "Replied to intent")
	return nil
}

func (r *Router) message(in Intent) messaging_api.MessageInterface {
	switch in {
	case Catalog:
		return r.templates.CatalogMessage(r.orderFormURL)
	case FAQ:
		return r.templates.FAQMessage()
	default:
		return r.templates.ChatSupportMessage()
	}
}
