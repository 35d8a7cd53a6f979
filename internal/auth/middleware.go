package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/annedfinds/storefront-notify/internal/logger"
)

// errorBody mirrors the callable error envelope used by the api package.
type errorBody struct {
	Error struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

func deny(w http.ResponseWriter, status int, code, message string) {
	var body errorBody
	body.Error.Status = code
	body.Error.Message = message
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// OperatorAuth returns an HTTP middleware that requires the operator key as a
// Bearer token. Missing or malformed credentials yield 401; a key that does
// not match, or an unconfigured key hash, yields 403.
func OperatorAuth(key *OperatorKey) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				deny(w, http.StatusUnauthorized, "UNAUTHENTICATED", "authorization header required")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				deny(w, http.StatusUnauthorized, "UNAUTHENTICATED", "invalid authorization format, expected Bearer <token>")
				return
			}

			token := strings.TrimSpace(parts[1])
			if token == "" {
				deny(w, http.StatusUnauthorized, "UNAUTHENTICATED", "empty operator key")
				return
			}

			if err := key.Verify(token); err != nil {
				log := logger.FromContext(r.Context())
				if errors.Is(err, ErrOperatorAccessDisabled) {
					log.Warn().Str("path", r.URL.Path).Msg("operator request rejected, no operator key configured")
					deny(w, http.StatusForbidden, "PERMISSION_DENIED", err.Error())
					return
				}
				log.Warn().Str("path", r.URL.Path).Str("remote_addr", ClientIP(r)).Msg("operator key mismatch")
				deny(w, http.StatusForbidden, "PERMISSION_DENIED", "invalid operator key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// KeyFunc derives a rate limit key from a request.
type KeyFunc func(r *http.Request) string

// ClientIP returns the request's remote host without the port. Forwarding
// headers are only reflected when chi's RealIP middleware ran first.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Limiter counts one request for key and reports whether it is allowed.
// When denied, the duration is how long the caller should wait.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
}

// RateLimit returns an HTTP middleware that rejects requests over the
// limiter's budget with 429 and a Retry-After header. Limiter errors are
// logged and the request is let through. A nil limiter allows everything.
func RateLimit(limiter Limiter, keyFn KeyFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, retryAfter, err := limiter.Allow(r.Context(), keyFn(r))
			if err != nil {
				log := logger.FromContext(r.Context())
				log.Warn().Err(err).Msg("rate limiter unavailable, allowing request")
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				secs := int(retryAfter.Round(time.Second) / time.Second)
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				deny(w, http.StatusTooManyRequests, "RESOURCE_EXHAUSTED", "too many messages, please try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
