package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorWrapper(t *testing.T) {
	wrapper := NewWrapper("notify", "multicast")

	t.Run("Wrap returns nil for nil error", func(t *testing.T) {
		if result := wrapper.Wrap(nil, "Failed to send notification"); result != nil {
			t.Errorf("expected nil, got %v", result)
		}
	})

	t.Run("Wrap creates WrappedError", func(t *testing.T) {
		wrapped := wrapper.Wrap(ErrSendFailed, "Failed to send notification")

		var wrappedErr *WrappedError
		if !errors.As(wrapped, &wrappedErr) {
			t.Fatal("expected WrappedError type")
		}
		if wrappedErr.Module != "notify" || wrappedErr.Operation != "multicast" {
			t.Errorf("unexpected context %s:%s", wrappedErr.Module, wrappedErr.Operation)
		}
		if wrappedErr.Status != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", wrappedErr.Status)
		}
		if !errors.Is(wrapped, ErrSendFailed) {
			t.Error("wrapped error should unwrap to ErrSendFailed")
		}
	})

	t.Run("WrapStatus keeps status through further wrapping", func(t *testing.T) {
		wrapped := NewWrapper("webhook", "verify").WrapStatus(ErrInvalidSignature, http.StatusUnauthorized, "Invalid signature")
		outer := fmt.Errorf("handle: %w", wrapped)

		if got := StatusOf(outer, http.StatusTeapot); got != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", got)
		}
		if got := GetUserMessage(outer); got != "Invalid signature" {
			t.Errorf("unexpected user message %q", got)
		}
	})
}

func TestGetUserMessage_Plain(t *testing.T) {
	if GetUserMessage(nil) != "" {
		t.Error("nil error should have empty message")
	}
	if got := GetUserMessage(errors.New("plain")); got != "plain" {
		t.Errorf("expected plain, got %q", got)
	}
	if got := StatusOf(errors.New("plain"), http.StatusBadGateway); got != http.StatusBadGateway {
		t.Errorf("expected fallback, got %d", got)
	}
}
