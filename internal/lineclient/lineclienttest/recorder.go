// Package lineclienttest provides an in-memory lineclient.Sender for tests.
package lineclienttest

import (
	"context"
	"sync"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	domerrors "github.com/shirasaka-flower/line-gateway/internal/errors"
)

// Call is one recorded outbound call.
type Call struct {
	Operation  string // push, multicast, reply
	To         []string
	ReplyToken string
	Messages   []messaging_api.MessageInterface
}

// Recorder records calls and optionally fails them.
type Recorder struct {
	mu    sync.Mutex
	calls []Call

	// Fail, when set, decides per call whether it fails with ErrSendFailed.
	Fail func(Call) bool
}

// Calls returns a snapshot of recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

func (r *Recorder) record(c Call) error {
	r.mu.Lock()
	r.calls = append(r.calls, c)
	r.mu.Unlock()

	if r.Fail != nil && r.Fail(c) {
		return domerrors.NewAPIError(c.Operation, 500, domerrors.ErrSendFailed)
	}
	return nil
}

// Push implements lineclient.Sender.
func (r *Recorder) Push(_ context.Context, to string, msgs ...messaging_api.MessageInterface) error {
	return r.record(Call{Operation: "push", To: []string{to}, Messages: msgs})
}

// Multicast implements lineclient.Sender.
func (r *Recorder) Multicast(_ context.Context, to []string, msgs ...messaging_api.MessageInterface) error {
	return r.record(Call{Operation: "multicast", To: append([]string(nil), to...), Messages: msgs})
}

// Reply implements lineclient.Sender.
func (r *Recorder) Reply(_ context.Context, replyToken string, msgs ...messaging_api.MessageInterface) error {
	return r.record(Call{Operation: "reply", ReplyToken: replyToken, Messages: msgs})
}
