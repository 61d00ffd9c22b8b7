package logger

import (
	"context"
	"log/slog"

	"github.com/shirasaka-flower/line-gateway/internal/ctxutil"
)

// ContextHandler is a slog.Handler decorator that extracts tracing values
// (request ID, LINE user ID, webhook event ID) from the context and adds them
// as attributes to every record.
type ContextHandler struct {
	handler slog.Handler
}

// NewContextHandler creates a new ContextHandler that wraps the provided handler.
func NewContextHandler(handler slog.Handler) *ContextHandler {
	return &ContextHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle adds context values to the record before delegating.
//
// Note: the context is only read for values. Canceling it does not affect
// record processing (per slog.Handler contract).
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		if requestID, ok := ctxutil.GetRequestID(ctx); ok && requestID != "" {
			r.AddAttrs(slog.String("request_id", requestID))
		}
		if userID := ctxutil.GetUserID(ctx); userID != "" {
			r.AddAttrs(slog.String("user_id", userID))
		}
		if eventID := ctxutil.GetEventID(ctx); eventID != "" {
			r.AddAttrs(slog.String("event_id", eventID))
		}
	}

	return h.handler.Handle(ctx, r)
}

// WithAttrs returns a new ContextHandler whose attributes consist of
// both the receiver's attributes and the arguments.
func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{handler: h.handler.WithAttrs(attrs)}
}

// WithGroup returns a new ContextHandler with the given group name prepended
// to the current group name.
func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{handler: h.handler.WithGroup(name)}
}
