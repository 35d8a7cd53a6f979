package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/annedfinds/storefront-notify/internal/auth"
	"github.com/annedfinds/storefront-notify/internal/msgstore"
	"github.com/annedfinds/storefront-notify/internal/storage"
)

// Deps are the collaborators the router wires into handlers.
// Archive and ContactLimiter are optional.
type Deps struct {
	Notifier       Notifier
	Logs           storage.Querier
	Archive        msgstore.MessageStore
	Tokens         TokenValidator
	DB             Pinger
	Transport      TransportHealth
	OperatorKey    *auth.OperatorKey
	ContactLimiter auth.Limiter
	AllowedOrigins []string
	Logger         zerolog.Logger

	// TrustProxyHeaders takes the client address from X-Forwarded-For,
	// X-Real-IP or True-Client-IP. Enable it only behind a proxy that
	// overwrites those headers.
	TrustProxyHeaders bool
}

// NewRouter creates a chi.Mux with all routes, middleware, and handlers configured.
func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	if d.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(CorrelationIDMiddleware)
	r.Use(LoggingMiddleware(d.Logger))
	r.Use(RecoverMiddleware(d.Logger))
	r.Use(MetricsMiddleware)
	r.Use(CORSMiddleware(d.AllowedOrigins))

	// Health and metrics endpoints (no auth required)
	r.Get("/healthz", HealthzHandler())
	r.Get("/readyz", ReadyzHandler(d.DB, d.Transport))
	r.Handle("/metrics", promhttp.Handler())

	// Callable endpoints used by the storefront (no auth required)
	r.Post("/sendOrderConfirmationEmail", SendOrderConfirmationHandler(d.Notifier))
	r.Post("/sendAdminPaymentNotification", SendAdminPaymentNotificationHandler(d.Notifier))
	r.Post("/sendCustomerPaymentConfirmation", SendCustomerPaymentConfirmationHandler(d.Notifier))
	r.Post("/verifyPaymentToken", VerifyPaymentTokenHandler(d.Tokens))
	r.With(auth.RateLimit(d.ContactLimiter, auth.ClientIP)).
		Post("/sendContactFormEmail", SendContactFormHandler(d.Notifier))

	// Operator endpoints (operator key required)
	r.Group(func(r chi.Router) {
		r.Use(auth.OperatorAuth(d.OperatorKey))

		r.Post("/testGmailEmail", TestEmailHandler(d.Notifier))
		r.Get("/api/v1/email-logs", ListEmailLogsHandler(d.Logs))
		r.Get("/api/v1/messages/{messageId}", GetArchivedMessageHandler(d.Archive))
	})

	return r
}
