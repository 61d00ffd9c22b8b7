// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shirasaka-flower/line-gateway/internal/buildinfo"
	"github.com/shirasaka-flower/line-gateway/internal/config"
	"github.com/shirasaka-flower/line-gateway/internal/intent"
	"github.com/shirasaka-flower/line-gateway/internal/lineclient"
	"github.com/shirasaka-flower/line-gateway/internal/logger"
	"github.com/shirasaka-flower/line-gateway/internal/metrics"
	"github.com/shirasaka-flower/line-gateway/internal/notify"
	"github.com/shirasaka-flower/line-gateway/internal/order"
	"github.com/shirasaka-flower/line-gateway/internal/replies"
	"github.com/shirasaka-flower/line-gateway/internal/sentry"
	"github.com/shirasaka-flower/line-gateway/internal/webhook"
)

// Application manages the application lifecycle and dependencies.
type Application struct {
	cfg      *config.Config
	logger   *logger.Logger
	metrics  *metrics.Metrics
	registry *prometheus.Registry
	sender   lineclient.Sender // nil without a channel access token
	router   *gin.Engine
	server   *http.Server
}

// Dependencies replaces externally facing components. Zero values are built
// from config.
type Dependencies struct {
	Logger *logger.Logger
	Sender lineclient.Sender
}

// Initialize creates the application from config: logging sinks, error
// tracking, the LINE client and the HTTP router.
func Initialize(cfg *config.Config) (*Application, error) {
	log := logger.NewWithOptions(cfg.LogLevel, os.Stdout, logger.Options{
		BetterStackToken: cfg.BetterStackToken,
	})
	log = log.WithField("service", "line-gateway")
	if host, err := os.Hostname(); err == nil && host != "" {
		log = log.WithField("instance_id", host)
	}

	// Package-level slog calls go through the ContextHandler too.
	slog.SetDefault(log.Logger)

	log.WithFields(map[string]any{
		"version":    buildinfo.Version,
		"commit":     buildinfo.Commit,
		"build_date": buildinfo.BuildDate,
	}).Info("Initializing application...")
	if cfg.BetterStackToken != "" {
		log.Info("Better Stack logging enabled")
	}

	if err := sentry.Initialize(sentry.Config{
		Token:       cfg.SentryToken,
		Host:        cfg.SentryHost,
		Environment: cfg.SentryEnvironment,
		Release:     buildinfo.Version,
	}); err != nil {
		log.WithError(err).Warn("Sentry initialization failed; error tracking disabled")
	} else if sentry.IsEnabled() {
		log.WithField("environment", cfg.SentryEnvironment).Info("Sentry error tracking enabled")
	}

	return New(cfg, Dependencies{Logger: log})
}

// New wires handlers and routes.
func New(cfg *config.Config, deps Dependencies) (*Application, error) {
	log := deps.Logger
	if log == nil {
		log = logger.New(cfg.LogLevel)
	}

	for _, warning := range cfg.Warnings() {
		log.Warn(warning)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewBuildInfoCollector(),
	)
	m := metrics.New(registry)

	sender := deps.Sender
	if sender == nil && cfg.LineChannelToken != "" {
		client, err := lineclient.New(cfg.LineChannelToken, lineclient.Options{
			Endpoint:   cfg.LineAPIEndpoint,
			HTTPClient: &http.Client{Timeout: config.LineAPIRequest},
			Metrics:    m,
			Logger:     log,
		})
		if err != nil {
			return nil, fmt.Errorf("line client: %w", err)
		}
		sender = client
	}

	templates, err := replies.Load()
	if err != nil {
		return nil, fmt.Errorf("reply templates: %w", err)
	}

	var validator *order.Validator
	if cfg.StrictValidation {
		validator = order.NewValidator()
		log.Info("Strict order validation enabled")
	}
	log.WithField("payment_tiers", cfg.PaymentTiers()).Debug("Payment links configured")

	notifyHandler := notify.NewHandler(notify.HandlerConfig{
		Sender:       sender,
		AdminIDs:     cfg.AdminIDs,
		PaymentLinks: cfg.PaymentLinks,
		Validator:    validator,
		SendTimeout:  config.LineAPIRequest,
		Metrics:      m,
		Logger:       log,
	})

	router := intent.NewRouter(intent.RouterConfig{
		Sender:       sender,
		Templates:    templates,
		OrderFormURL: cfg.OrderFormURL(),
		Metrics:      m,
		Logger:       log.WithModule("intent"),
	})
	webhookHandler := webhook.NewHandler(cfg.LineChannelSecret, router,
		webhook.WithWebhookConfig(cfg.Webhook),
		webhook.WithMetrics(m),
		webhook.WithLogger(log),
	)

	app := &Application{
		cfg:      cfg,
		logger:   log,
		metrics:  m,
		registry: registry,
		sender:   sender,
	}
	app.router = app.setupRouter(notifyHandler, webhookHandler)
	app.server = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.router,
		ReadHeaderTimeout: config.HTTPReadHeader,
		ReadTimeout:       config.HTTPRead,
		WriteTimeout:      config.HTTPWrite,
		IdleTimeout:       config.HTTPIdle,
	}

	log.Info("Initialization complete")
	return app, nil
}

func (a *Application) setupRouter(notifyHandler *notify.Handler, webhookHandler *webhook.Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	router.Use(securityHeadersMiddleware())
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(a.logger))

	router.GET("/livez", a.livenessCheck)
	router.HEAD("/livez", a.livenessCheck)
	router.GET("/readyz", a.readinessCheck)
	router.HEAD("/readyz", a.readinessCheck)

	// Both handlers read the raw body themselves; no binding middleware here.
	api := router.Group("/api")
	api.POST("/notify", notifyHandler.Handle)
	api.POST("/webhook", webhookHandler.Handle)

	router.GET("/metrics",
		metricsAuthMiddleware(a.cfg.MetricsUsername, a.cfg.MetricsPassword),
		gin.WrapH(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))

	return router
}

// Handler returns the HTTP handler serving every route.
func (a *Application) Handler() http.Handler {
	return a.router
}

func (a *Application) livenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

func (a *Application) getFeatures() map[string]bool {
	return map[string]bool{
		"webhook":           a.cfg.LineChannelSecret != "",
		"liff_order_form":   a.cfg.OrderFormURLEnv != "" || a.cfg.LIFFID != "",
		"payment_links":     len(a.cfg.PaymentLinks) > 0,
		"strict_validation": a.cfg.StrictValidation,
		"error_tracking":    sentry.IsEnabled(),
		"remote_logging":    a.cfg.BetterStackToken != "",
	}
}

// readinessCheck reports whether order notifications can be delivered.
func (a *Application) readinessCheck(c *gin.Context) {
	var reason string
	switch {
	case a.sender == nil:
		reason = "channel access token not configured"
	case len(a.cfg.AdminIDs) == 0:
		reason = "admin user id not configured"
	}

	if reason != "" {
		a.logger.WithField("reason", reason).DebugContext(c.Request.Context(), "Readiness check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": reason,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ready",
		"admins":   len(a.cfg.AdminIDs),
		"features": a.getFeatures(),
	})
}

// Run serves HTTP until ctx is canceled (typically by SIGINT/SIGTERM), then
// shuts down gracefully. A listener failure is returned after shutdown.
func (a *Application) Run(ctx context.Context) error {
	serveErr := make(chan error, 1)
	go func() {
		a.logger.WithField("port", a.cfg.Port).Info("Starting HTTP server")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("Received shutdown signal")
	case err := <-serveErr:
		if err != nil {
			a.logger.WithError(err).Error("HTTP server error")
			runErr = fmt.Errorf("http server: %w", err)
		}
	}

	return errors.Join(runErr, a.shutdown())
}

// shutdown stops accepting requests, waits for in-flight ones (webhook
// fan-out included, since it completes before its response), then flushes
// error and log sinks.
func (a *Application) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	var errs []error
	a.logger.Info("Stopping HTTP server...")
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Error("HTTP server shutdown error")
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}

	if sentry.IsEnabled() && !sentry.Flush(config.LogFlush) {
		a.logger.Warn("Sentry flush timed out")
	}

	a.logger.Info("Shutdown complete")

	flushCtx, flushCancel := context.WithTimeout(context.Background(), config.LogFlush)
	defer flushCancel()
	if err := a.logger.Shutdown(flushCtx); err != nil {
		// Remote sink is gone; stdout still works.
		a.logger.WithError(err).Warn("Logger shutdown timed out")
	}

	return errors.Join(errs...)
}
