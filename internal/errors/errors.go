// Package errors provides domain-specific error types and sentinel errors
// for improved error handling across the application.
package errors

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrMissingToken indicates LINE_CHANNEL_ACCESS_TOKEN is not configured.
	ErrMissingToken = errors.New("channel access token not configured")

	// ErrMissingAdminID indicates LINE_ADMIN_USER_ID yields no recipients.
	ErrMissingAdminID = errors.New("admin user id not configured")

	// ErrMissingSecret indicates LINE_CHANNEL_SECRET is not configured.
	ErrMissingSecret = errors.New("channel secret not configured")

	// ErrMissingSignature indicates the x-line-signature header is absent.
	ErrMissingSignature = errors.New("missing signature header")

	// ErrInvalidSignature indicates the webhook body failed HMAC verification.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrMalformedBody indicates a request body that is not the expected JSON.
	ErrMalformedBody = errors.New("malformed request body")

	// ErrInvalidOrder indicates an order submission rejected by strict validation.
	ErrInvalidOrder = errors.New("invalid order")

	// ErrSendFailed indicates an outbound LINE Messaging API call failed.
	ErrSendFailed = errors.New("line send failed")
)

// IsSendFailed reports whether err came from an outbound LINE call.
func IsSendFailed(err error) bool {
	return errors.Is(err, ErrSendFailed)
}

// IsConfigError reports whether err is caused by missing LINE credentials.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrMissingToken) ||
		errors.Is(err, ErrMissingAdminID) ||
		errors.Is(err, ErrMissingSecret)
}

// ValidationError represents a single field validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// ValidationErrors collects every failing field of one order.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	fields := make([]string, 0, len(e))
	for _, v := range e {
		fields = append(fields, v.Field)
	}
	return fmt.Sprintf("%s: %s", ErrInvalidOrder, strings.Join(fields, ", "))
}

// Unwrap lets errors.Is match ErrInvalidOrder.
func (e ValidationErrors) Unwrap() error {
	return ErrInvalidOrder
}

// Fields returns field name to message, for JSON responses.
func (e ValidationErrors) Fields() map[string]string {
	out := make(map[string]string, len(e))
	for _, v := range e {
		out[v.Field] = v.Message
	}
	return out
}

// FieldNames returns the failing field names in sorted order.
func (e ValidationErrors) FieldNames() []string {
	return slices.Sorted(maps.Keys(e.Fields()))
}

// APIError represents a failed LINE Messaging API call.
type APIError struct {
	Operation  string // push, multicast, reply
	StatusCode int    // 0 when no HTTP response was received
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %s (status=%d): %v", ErrSendFailed, e.Operation, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", ErrSendFailed, e.Operation, e.Err)
}

// Unwrap exposes both ErrSendFailed and the underlying cause.
func (e *APIError) Unwrap() []error {
	return []error{ErrSendFailed, e.Err}
}

// NewAPIError creates a new LINE API error.
func NewAPIError(operation string, statusCode int, err error) *APIError {
	return &APIError{
		Operation:  operation,
		StatusCode: statusCode,
		Err:        err,
	}
}
