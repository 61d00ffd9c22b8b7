// Package event decodes LINE webhook deliveries. Only the fields the gateway
// acts on or logs are modeled; everything else in the payload is ignored.
package event

import (
	"encoding/json"
	"fmt"

	domerrors "github.com/shirasaka-flower/line-gateway/internal/errors"
)

// Event and message type values.
const (
	TypeMessage  = "message"
	TypeFollow   = "follow"
	TypeUnfollow = "unfollow"
	TypePostback = "postback"

	MessageTypeText = "text"
)

// Envelope is the webhook request body.
type Envelope struct {
	Destination string  `json:"destination"`
	Events      []Event `json:"events"`
}

// Event is a single webhook event.
type Event struct {
	Type            string           `json:"type"`
	ReplyToken      string           `json:"replyToken"`
	WebhookEventID  string           `json:"webhookEventId"`
	Timestamp       int64            `json:"timestamp"`
	Source          *Source          `json:"source,omitempty"`
	DeliveryContext *DeliveryContext `json:"deliveryContext,omitempty"`
	Message         *Message         `json:"message,omitempty"`
}

// Source identifies who sent the event.
type Source struct {
	Type    string `json:"type"`
	UserID  string `json:"userId"`
	GroupID string `json:"groupId"`
	RoomID  string `json:"roomId"`
}

// DeliveryContext reports whether LINE is redelivering the event.
type DeliveryContext struct {
	IsRedelivery bool `json:"isRedelivery"`
}

// Message is the message payload of a message event.
type Message struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Text string `json:"text"`
}

// Decode parses a webhook body. The events array must be present; an empty
// array is valid (LINE sends one when verifying the endpoint).
func Decode(body []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", domerrors.ErrMalformedBody, err)
	}
	if env.Events == nil {
		return nil, fmt.Errorf("%w: missing events array", domerrors.ErrMalformedBody)
	}
	return &env, nil
}

// Text returns the text of a text message event.
func (e Event) Text() (string, bool) {
	if e.Type != TypeMessage || e.Message == nil || e.Message.Type != MessageTypeText {
		return "", false
	}
	return e.Message.Text, true
}

// UserID returns the sending user's id, if present.
func (e Event) UserID() string {
	if e.Source == nil {
		return ""
	}
	return e.Source.UserID
}

// IsRedelivery reports whether the platform flagged the event as a redelivery.
func (e Event) IsRedelivery() bool {
	return e.DeliveryContext != nil && e.DeliveryContext.IsRedelivery
}
