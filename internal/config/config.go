// Package config provides application configuration management.
// It loads settings from environment variables (optionally seeded from a
// .env file) into one immutable bundle shared by all handlers.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultPaymentLinks are the Square links used when SQUARE_PAYMENT_LINKS is unset.
const DefaultPaymentLinks = "3300=https://square.link/u/B3FkQL5S," +
	"5500=https://square.link/u/cRv8q9eh," +
	"11000=https://square.link/u/mock11000"

// PlaceholderLIFFID is substituted into the order form URL when no LIFF id is configured.
const PlaceholderLIFFID = "YOUR_LIFF_ID"

// LINEMaxEventsPerWebhook caps events processed from one delivery.
const LINEMaxEventsPerWebhook = 100

// Config holds all application configuration
type Config struct {
	// LINE channel. Missing values are reported per request, not at boot.
	LineChannelToken  string
	LineChannelSecret string
	AdminIDs          []string // parsed from LINE_ADMIN_USER_ID, order preserved
	LineAPIEndpoint   string   // empty = SDK default (https://api.line.me)

	// Order form
	LIFFID           string
	OrderFormURLEnv  string            // explicit ORDER_FORM_URL, wins over LIFFID
	PaymentLinks     map[string]string // budget tier -> Square link
	StrictValidation bool

	// Metrics Authentication
	MetricsUsername string // Username for /metrics endpoint Basic Auth (default: "prometheus")
	MetricsPassword string // Password for /metrics endpoint Basic Auth (empty = no auth)

	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration

	// Observability
	BetterStackToken  string
	SentryToken       string
	SentryHost        string
	SentryEnvironment string

	Webhook WebhookConfig
}

// WebhookConfig holds webhook processing limits
type WebhookConfig struct {
	MaxEventsPerWebhook int           // events beyond this are dropped (default: 100)
	EventTimeout        time.Duration // per-event processing budget
}

// Load reads configuration from environment variables
// It attempts to load .env file first, then reads from env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	links, linkErr := ParsePaymentLinks(getEnv(EnvSquarePaymentLinks, DefaultPaymentLinks))

	cfg := &Config{
		LineChannelToken:  getEnv(EnvLineChannelAccessToken, ""),
		LineChannelSecret: getEnv(EnvLineChannelSecret, ""),
		AdminIDs:          ParseAdminIDs(os.Getenv(EnvLineAdminUserID)),
		LineAPIEndpoint:   getEnv(EnvLineAPIEndpoint, ""),

		LIFFID:           getEnv(EnvLIFFID, ""),
		OrderFormURLEnv:  getEnv(EnvOrderFormURL, ""),
		PaymentLinks:     links,
		StrictValidation: getBoolEnv(EnvOrderStrictValidation, false),

		MetricsUsername: getEnv(EnvMetricsUsername, "prometheus"),
		MetricsPassword: getEnv(EnvMetricsPassword, ""),

		Port:            getEnv(EnvPort, "10000"),
		LogLevel:        getEnv(EnvLogLevel, "info"),
		ShutdownTimeout: getDurationEnv(EnvShutdownTimeout, GracefulShutdown),

		BetterStackToken:  getEnv(EnvBetterStackToken, ""),
		SentryToken:       getEnv(EnvSentryToken, ""),
		SentryHost:        getEnv(EnvSentryHost, ""),
		SentryEnvironment: getEnv(EnvSentryEnvironment, "production"),

		Webhook: WebhookConfig{
			MaxEventsPerWebhook: LINEMaxEventsPerWebhook,
			EventTimeout:        WebhookEvent,
		},
	}

	if err := errors.Join(linkErr, cfg.Validate()); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks structural server settings. Missing LINE credentials are
// not an error here; see Warnings.
func (c *Config) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	} else if p, err := strconv.Atoi(c.Port); err != nil || p <= 0 || p > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be a TCP port number, got %q", c.Port))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %v", c.ShutdownTimeout))
	}
	if c.Webhook.MaxEventsPerWebhook <= 0 {
		errs = append(errs, fmt.Errorf("max events per webhook must be positive, got %d", c.Webhook.MaxEventsPerWebhook))
	}
	if c.Webhook.EventTimeout <= 0 {
		errs = append(errs, fmt.Errorf("webhook event timeout must be positive, got %v", c.Webhook.EventTimeout))
	}
	if c.SentryToken != "" && c.SentryHost == "" {
		errs = append(errs, errors.New("SENTRY_HOST is required when SENTRY_TOKEN is set"))
	}
	if c.LineAPIEndpoint != "" {
		if err := validateURL(c.LineAPIEndpoint); err != nil {
			errs = append(errs, fmt.Errorf("LINE_API_ENDPOINT: %w", err))
		}
	}
	if c.OrderFormURLEnv != "" {
		if err := validateURL(c.OrderFormURLEnv); err != nil {
			errs = append(errs, fmt.Errorf("ORDER_FORM_URL: %w", err))
		}
	}

	return errors.Join(errs...)
}

// Warnings lists settings that leave part of the gateway unable to serve.
// They are logged at boot.
func (c *Config) Warnings() []string {
	var warnings []string
	if c.LineChannelToken == "" {
		warnings = append(warnings, EnvLineChannelAccessToken+" is not set; notifications and replies will fail")
	}
	if c.LineChannelSecret == "" {
		warnings = append(warnings, EnvLineChannelSecret+" is not set; webhook requests will be rejected")
	}
	if len(c.AdminIDs) == 0 {
		warnings = append(warnings, EnvLineAdminUserID+" is not set; order notifications will fail")
	}
	if c.OrderFormURLEnv == "" && c.LIFFID == "" {
		warnings = append(warnings, EnvLIFFID+" is not set; catalog buttons point at a placeholder LIFF URL")
	}
	return warnings
}

// OrderFormURL resolves the catalog button target.
func (c *Config) OrderFormURL() string {
	if c.OrderFormURLEnv != "" {
		return c.OrderFormURLEnv
	}
	liffID := c.LIFFID
	if liffID == "" {
		liffID = PlaceholderLIFFID
	}
	return "https://liff.line.me/" + liffID + "/order"
}

// ParseAdminIDs splits a comma-separated id list, trimming whitespace and
// discarding empty entries. Order is preserved.
func ParseAdminIDs(raw string) []string {
	var ids []string
	for part := range strings.SplitSeq(raw, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// ParsePaymentLinks parses "tier=url,tier=url". Tiers must be positive
// integers and URLs absolute http(s).
func ParsePaymentLinks(raw string) (map[string]string, error) {
	links := make(map[string]string)
	var errs []error

	for entry := range strings.SplitSeq(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		tier, link, ok := strings.Cut(entry, "=")
		tier, link = strings.TrimSpace(tier), strings.TrimSpace(link)
		if !ok || tier == "" || link == "" {
			errs = append(errs, fmt.Errorf("payment link %q: want tier=url", entry))
			continue
		}
		if n, err := strconv.Atoi(tier); err != nil || n <= 0 {
			errs = append(errs, fmt.Errorf("payment link %q: tier must be a positive integer", entry))
			continue
		}
		if err := validateURL(link); err != nil {
			errs = append(errs, fmt.Errorf("payment link %q: %w", entry, err))
			continue
		}
		links[tier] = link
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%s: %w", EnvSquarePaymentLinks, errors.Join(errs...))
	}
	return links, nil
}

// PaymentTiers returns configured budget tiers in ascending order.
func (c *Config) PaymentTiers() []string {
	tiers := make([]string, 0, len(c.PaymentLinks))
	for tier := range c.PaymentLinks {
		tiers = append(tiers, tier)
	}
	slices.SortFunc(tiers, func(a, b string) int {
		x, _ := strconv.Atoi(a)
		y, _ := strconv.Atoi(b)
		return x - y
	})
	return tiers
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return fmt.Errorf("must be an absolute http(s) URL, got %q", raw)
	}
	return nil
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getBoolEnv retrieves boolean environment variable with fallback to default value
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
