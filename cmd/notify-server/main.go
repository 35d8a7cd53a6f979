package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annedfinds/storefront-notify/internal/api"
	"github.com/annedfinds/storefront-notify/internal/auth"
	"github.com/annedfinds/storefront-notify/internal/config"
	"github.com/annedfinds/storefront-notify/internal/dispatch"
	"github.com/annedfinds/storefront-notify/internal/logger"
	"github.com/annedfinds/storefront-notify/internal/mailer"
	"github.com/annedfinds/storefront-notify/internal/msgstore"
	"github.com/annedfinds/storefront-notify/internal/render"
	"github.com/annedfinds/storefront-notify/internal/storage"
)

const defaultSigningKey = "change-me-in-production"

func main() {
	// Load configuration
	cfg, err := config.Load("config")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewFromConfig(cfg.Logging)
	log.Info().Str("transport", cfg.SMTP.Type).Msg("starting notification server")

	// Connect to database and apply migrations
	ctx := context.Background()
	db, err := storage.NewDB(
		ctx,
		cfg.Database.URL,
		cfg.Database.PoolMin,
		cfg.Database.PoolMax,
		cfg.Database.ConnectTimeout,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := storage.Migrate(ctx, db.Pool); err != nil {
		log.Fatal().Err(err).Msg("failed to apply migrations")
	}
	log.Info().Msg("database connection established")

	queries := storage.New(db.Pool)

	// Mail transport and its background health probe
	transport, err := mailer.New(cfg.SMTP)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create mail transport")
	}
	health := mailer.NewHealthChecker(transport)
	health.Start()
	defer health.Stop()

	// Optional message archive
	archive, err := msgstore.New(cfg.Archive, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create message archive")
	}

	renderer, err := render.New(render.Brand{
		StoreName:    cfg.Mail.StoreName,
		SupportEmail: cfg.Mail.SenderAddress,
		SupportPhone: cfg.Mail.SupportPhone,
		SiteURL:      cfg.Mail.SiteURL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load templates")
	}

	if cfg.Payment.TokenSigningKey == "" || cfg.Payment.TokenSigningKey == defaultSigningKey {
		log.Warn().Msg("payment token signing key is not set or using default value; set STOREFRONT_NOTIFY_PAYMENT_TOKEN_SIGNING_KEY in production")
	}
	tokens := auth.NewPaymentTokens(cfg.Payment)

	dispatcher, err := dispatch.New(dispatch.Options{
		Transport: transport,
		Records:   queries,
		Archive:   archive,
		Links:     tokens,
		Renderer:  renderer,
		Identity:  dispatch.IdentityFromConfig(cfg.Mail, cfg.SMTP),
		Payment:   cfg.Payment,
		Logger:    log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create dispatcher")
	}

	// Contact form rate limiting (disabled without Redis)
	redisClient := auth.NewRedisClient(cfg.RateLimit)
	if redisClient != nil {
		defer redisClient.Close()
		log.Info().Str("addr", cfg.RateLimit.RedisAddr).Msg("contact rate limiting enabled")
	} else {
		log.Warn().Msg("ratelimit.redis_addr not set; contact form is not rate limited")
	}
	limiter := auth.NewContactLimiter(redisClient, cfg.RateLimit)

	operatorKey := auth.NewOperatorKey(cfg.Auth.OperatorKeyHash)
	if !operatorKey.Enabled() {
		log.Warn().Msg("auth.operator_key_hash not set; operator endpoints are disabled")
	}

	router := api.NewRouter(api.Deps{
		Notifier:          dispatcher,
		Logs:              queries,
		Archive:           archive,
		Tokens:            tokens,
		DB:                db,
		Transport:         health,
		OperatorKey:       operatorKey,
		ContactLimiter:    limiter,
		AllowedOrigins:    cfg.API.AllowedOrigins,
		Logger:            log,
		TrustProxyHeaders: cfg.API.TrustProxyHeaders,
	})

	// Publish pool statistics
	statsDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-statsDone:
				return
			case <-ticker.C:
				db.RecordStats()
			}
		}
	}()
	defer close(statsDone)

	// Configure HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("notification server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info().Str("signal", sig.String()).Msg("shutting down server")

	// Graceful shutdown with 30-second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
