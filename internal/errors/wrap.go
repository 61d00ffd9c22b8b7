package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorWrapper attaches handler context to errors that end up in a response.
type ErrorWrapper struct {
	operation string
	module    string
}

// NewWrapper creates a new error wrapper with operation and module context.
func NewWrapper(module, operation string) *ErrorWrapper {
	return &ErrorWrapper{
		module:    module,
		operation: operation,
	}
}

// Wrap wraps an error as a 500 with the given client-facing message.
// Returns nil if err is nil.
func (w *ErrorWrapper) Wrap(err error, userMessage string) error {
	return w.WrapStatus(err, http.StatusInternalServerError, userMessage)
}

// WrapStatus wraps an error with an explicit HTTP status.
func (w *ErrorWrapper) WrapStatus(err error, status int, userMessage string) error {
	if err == nil {
		return nil
	}
	return &WrappedError{
		Operation:   w.operation,
		Module:      w.module,
		Status:      status,
		Cause:       err,
		UserMessage: userMessage,
	}
}

// WrappedError contains both internal error details and the response message.
type WrappedError struct {
	Operation   string // e.g. "multicast", "verify_signature"
	Module      string // e.g. "notify", "webhook"
	Status      int    // HTTP status for the response
	Cause       error
	UserMessage string // exact "error" value returned to the client
}

func (e *WrappedError) Error() string {
	return fmt.Sprintf("[%s:%s] %s: %v", e.Module, e.Operation, e.UserMessage, e.Cause)
}

func (e *WrappedError) Unwrap() error {
	return e.Cause
}

// GetUserMessage returns the client-facing message of a WrappedError anywhere
// in the chain. Returns the error string otherwise.
func GetUserMessage(err error) string {
	if err == nil {
		return ""
	}
	var wrapped *WrappedError
	if errors.As(err, &wrapped) {
		return wrapped.UserMessage
	}
	return err.Error()
}

// StatusOf returns the HTTP status carried by a WrappedError, or fallback.
func StatusOf(err error, fallback int) int {
	var wrapped *WrappedError
	if errors.As(err, &wrapped) && wrapped.Status != 0 {
		return wrapped.Status
	}
	return fallback
}
