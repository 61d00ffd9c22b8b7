// Package config provides centralized timeout constants for the application.
//
// LINE expects the webhook to be acknowledged quickly, and both endpoints only
// make one outbound Messaging API call per event, so the budgets are short.
package config

import "time"

// HTTP server timeouts
const (
	// HTTPRead covers reading the request. Order forms and webhook
	// deliveries are small JSON documents.
	HTTPRead = 10 * time.Second

	// HTTPWrite must exceed LineAPIRequest so a slow multicast still gets
	// its response written.
	HTTPWrite = 30 * time.Second

	// HTTPIdle is the keep-alive idle timeout.
	HTTPIdle = 120 * time.Second

	// HTTPReadHeader bounds header reads.
	HTTPReadHeader = 5 * time.Second
)

// Outbound timeouts
const (
	// LineAPIRequest bounds a single push, multicast or reply call.
	LineAPIRequest = 20 * time.Second

	// WebhookEvent bounds processing of one webhook event, reply included.
	WebhookEvent = 25 * time.Second
)

// Graceful shutdown
const (
	// GracefulShutdown is the default for SHUTDOWN_TIMEOUT.
	GracefulShutdown = 30 * time.Second

	// LogFlush bounds draining of queued remote log records on exit.
	LogFlush = 5 * time.Second
)
