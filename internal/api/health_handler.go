package api

import (
	"context"
	"net/http"

	"github.com/annedfinds/storefront-notify/internal/dispatch"
)

// Pinger is satisfied by *storage.DB.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TransportHealth is satisfied by *mailer.HealthChecker.
type TransportHealth interface {
	IsHealthy() bool
}

// HealthzHandler handles GET /healthz.
// Always returns 200 OK with {"status":"ok"}.
func HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// ReadyzHandler handles GET /readyz.
// Checks database connectivity via ping and the cached transport health.
// Returns 200 if healthy, 503 with Retry-After header if unhealthy.
func ReadyzHandler(db Pinger, transport TransportHealth) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			w.Header().Set("Retry-After", "30")
			respondError(w, http.StatusServiceUnavailable, dispatch.CodeInternal, "database unavailable")
			return
		}
		if transport != nil && !transport.IsHealthy() {
			w.Header().Set("Retry-After", "30")
			respondError(w, http.StatusServiceUnavailable, dispatch.CodeInternal, "mail transport unavailable")
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
