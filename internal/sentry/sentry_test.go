package sentry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestInitialize_EmptyToken(t *testing.T) {
	if err := Initialize(Config{Token: ""}); err != nil {
		t.Errorf("Expected nil error for empty token, got %v", err)
	}
}

func TestInitialize_MissingHost(t *testing.T) {
	t.Parallel()

	if err := Initialize(Config{Token: "test-token", Host: ""}); err == nil {
		t.Error("Expected error when host is missing")
	}
}

func TestConfig_DSN(t *testing.T) {
	t.Parallel()

	cfg := Config{Token: "abc", Host: "s1.eu.betterstackdata.com"}
	if got := cfg.DSN(); got != "https://abc@s1.eu.betterstackdata.com/1" {
		t.Errorf("unexpected DSN %q", got)
	}
}

func TestInitialize_ValidConfig(t *testing.T) {
	// Sentry uses global state

	err := Initialize(Config{
		Token:       "test-token",
		Host:        "errors.betterstack.com",
		Environment: "test",
	})
	if err != nil {
		t.Fatalf("Expected nil error, got %v", err)
	}
	if !IsEnabled() {
		t.Error("Expected IsEnabled() to return true after initialization")
	}

	// Must not panic with or without a request-bound hub.
	CaptureException(context.Background(), errors.New("multicast failed"), map[string]string{"module": "notify"})
	CaptureException(context.Background(), nil, nil)

	Flush(time.Second)
}
