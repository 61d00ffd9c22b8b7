package config

//nolint:gosec,revive // Environment variable keys are not credentials and do not need per-const comments.
const (
	// LINE channel
	EnvLineChannelAccessToken = "LINE_CHANNEL_ACCESS_TOKEN"
	EnvLineChannelSecret      = "LINE_CHANNEL_SECRET"
	EnvLineAdminUserID        = "LINE_ADMIN_USER_ID"
	EnvLineAPIEndpoint        = "LINE_API_ENDPOINT"

	// Order form
	EnvLIFFID                = "NEXT_PUBLIC_LIFF_ID"
	EnvOrderFormURL          = "ORDER_FORM_URL"
	EnvSquarePaymentLinks    = "SQUARE_PAYMENT_LINKS"
	EnvOrderStrictValidation = "ORDER_STRICT_VALIDATION"

	// Server
	EnvPort            = "PORT"
	EnvLogLevel        = "LOG_LEVEL"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	// Metrics auth
	EnvMetricsUsername = "METRICS_USERNAME"
	EnvMetricsPassword = "METRICS_PASSWORD"

	// Better Stack logs
	EnvBetterStackToken = "BETTERSTACK_TOKEN"

	// Sentry (Better Stack errors)
	EnvSentryToken       = "SENTRY_TOKEN"
	EnvSentryHost        = "SENTRY_HOST"
	EnvSentryEnvironment = "SENTRY_ENVIRONMENT"
)
