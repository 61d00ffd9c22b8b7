// Package lineclient adapts the LINE Messaging API SDK to the three outbound
// calls the gateway makes: push, multicast and reply.
package lineclient

import (
	"context"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	domerrors "github.com/shirasaka-flower/line-gateway/internal/errors"
	"github.com/shirasaka-flower/line-gateway/internal/lineutil"
	"github.com/shirasaka-flower/line-gateway/internal/logger"
	"github.com/shirasaka-flower/line-gateway/internal/metrics"
)

// Operation names used in logs, metrics and errors.
const (
	OpPush      = "push"
	OpMulticast = "multicast"
	OpReply     = "reply"
)

// Sender delivers messages to LINE. Every failure is reported as an error
// matching errors.ErrSendFailed; nothing is retried.
type Sender interface {
	Push(ctx context.Context, to string, msgs ...messaging_api.MessageInterface) error
	Multicast(ctx context.Context, to []string, msgs ...messaging_api.MessageInterface) error
	Reply(ctx context.Context, replyToken string, msgs ...messaging_api.MessageInterface) error
}

// Options configures a Client.
type Options struct {
	// Endpoint overrides the API base URL (https://api.line.me by default).
	Endpoint string
	// HTTPClient overrides the transport. Its Timeout bounds every call.
	HTTPClient *http.Client
	Metrics    *metrics.Metrics
	Logger     *logger.Logger
	// NewRetryKey generates X-Line-Retry-Key values; defaults to UUIDv4.
	NewRetryKey func() string
}

// Client is the Sender backed by the Messaging API SDK.
type Client struct {
	api         *messaging_api.MessagingApiAPI
	metrics     *metrics.Metrics
	logger      *logger.Logger
	newRetryKey func() string
}

// New creates a Client bearing the channel access token.
func New(accessToken string, opts Options) (*Client, error) {
	if accessToken == "" {
		return nil, domerrors.ErrMissingToken
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	apiOpts := []messaging_api.MessagingApiAPIOption{messaging_api.WithHTTPClient(httpClient)}
	if opts.Endpoint != "" {
		apiOpts = append(apiOpts, messaging_api.WithEndpoint(opts.Endpoint))
	}

	api, err := messaging_api.NewMessagingApiAPI(accessToken, apiOpts...)
	if err != nil {
		return nil, fmt.Errorf("create messaging api client: %w", err)
	}

	newRetryKey := opts.NewRetryKey
	if newRetryKey == nil {
		newRetryKey = func() string { return uuid.NewString() }
	}
	log := opts.Logger
	if log == nil {
		log = logger.New("info")
	}

	return &Client{
		api:         api,
		metrics:     opts.Metrics,
		logger:      log.WithModule("lineclient"),
		newRetryKey: newRetryKey,
	}, nil
}

// Push sends messages to a single user, group or room.
func (c *Client) Push(ctx context.Context, to string, msgs ...messaging_api.MessageInterface) error {
	if err := checkMessages(OpPush, msgs); err != nil {
		return err
	}
	retryKey := c.newRetryKey()
	return c.do(ctx, OpPush, func(api *messaging_api.MessagingApiAPI) (*http.Response, error) {
		resp, _, err := api.PushMessageWithHttpInfo(&messaging_api.PushMessageRequest{
			To:       to,
			Messages: msgs,
		}, retryKey)
		return resp, err
	})
}

// Multicast sends the same messages to every recipient in one call.
func (c *Client) Multicast(ctx context.Context, to []string, msgs ...messaging_api.MessageInterface) error {
	if err := checkMessages(OpMulticast, msgs); err != nil {
		return err
	}
	if n := len(to); n == 0 || n > lineutil.MaxMulticastRecipients {
		return domerrors.NewAPIError(OpMulticast, 0, fmt.Errorf("recipient count %d outside 1..%d", n, lineutil.MaxMulticastRecipients))
	}
	retryKey := c.newRetryKey()
	return c.do(ctx, OpMulticast, func(api *messaging_api.MessagingApiAPI) (*http.Response, error) {
		resp, _, err := api.MulticastWithHttpInfo(&messaging_api.MulticastRequest{
			To:       to,
			Messages: msgs,
		}, retryKey)
		return resp, err
	})
}

// Reply answers a webhook event using its single-use reply token.
func (c *Client) Reply(ctx context.Context, replyToken string, msgs ...messaging_api.MessageInterface) error {
	if err := checkMessages(OpReply, msgs); err != nil {
		return err
	}
	return c.do(ctx, OpReply, func(api *messaging_api.MessagingApiAPI) (*http.Response, error) {
		resp, _, err := api.ReplyMessageWithHttpInfo(&messaging_api.ReplyMessageRequest{
			ReplyToken: replyToken,
			Messages:   msgs,
		})
		return resp, err
	})
}

// checkMessages rejects requests LINE would answer with 400 before any
// network call is made.
func checkMessages(op string, msgs []messaging_api.MessageInterface) error {
	if n := len(msgs); n == 0 || n > lineutil.MaxMessagesPerRequest {
		return domerrors.NewAPIError(op, 0, fmt.Errorf("message count %d outside 1..%d", n, lineutil.MaxMessagesPerRequest))
	}
	for i, msg := range msgs {
		text, ok := msg.(*messaging_api.TextMessage)
		if !ok {
			continue
		}
		if n := utf8.RuneCountInString(text.Text); n > lineutil.MaxTextMessageLength {
			return domerrors.NewAPIError(op, 0, fmt.Errorf("message %d: text length %d exceeds %d", i, n, lineutil.MaxTextMessageLength))
		}
	}
	return nil
}

func (c *Client) do(ctx context.Context, op string, call func(*messaging_api.MessagingApiAPI) (*http.Response, error)) error {
	start := time.Now()
	resp, err := call(c.api.WithContext(ctx))
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	duration := time.Since(start)

	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	if err == nil && (status < 200 || status > 299) {
		err = fmt.Errorf("unexpected status code: %d", status)
	}

	if err != nil {
		c.metrics.RecordLineAPI(op, metrics.StatusError, duration.Seconds())
		c.logger.WithError(err).
			WithField("operation", op).
			WithField("status", status).
			WithField("duration_ms", duration.Milliseconds()).
			ErrorContext(ctx, "LINE API call failed")
		return domerrors.NewAPIError(op, status, err)
	}

	c.metrics.RecordLineAPI(op, metrics.StatusSuccess, duration.Seconds())
	c.logger.WithField("operation", op).
		WithField("duration_ms", duration.Milliseconds()).
		DebugContext(ctx, "LINE API call succeeded")
	return nil
}
