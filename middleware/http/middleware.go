// Package http provides HTTP middleware for daily usage enforcement
package http

import (
	"fmt"
	"net/http"

	"github.com/summarihq/usagekit/pkg/usagekit"
)

// IdentityExtractor extracts the client identity from an HTTP request.
// Return empty string if the client is not identified.
type IdentityExtractor func(r *http.Request) string

// Config holds middleware configuration
type Config struct {
	// Tracker is the usage tracker instance (required)
	Tracker *usagekit.Tracker

	// GetIdentity extracts the client identity from the request (required)
	GetIdentity IdentityExtractor

	// OnQuotaExceeded is called when the daily limit is reached
	// If nil, returns 429 Too Many Requests
	OnQuotaExceeded func(w http.ResponseWriter, r *http.Request, result *usagekit.UseResult)

	// OnUnauthorized is called when no identity is present
	// If nil, returns 401 Unauthorized
	OnUnauthorized func(w http.ResponseWriter, r *http.Request)

	// OnError is called when an internal error occurs
	// If nil, returns 500 Internal Server Error
	OnError func(w http.ResponseWriter, r *http.Request, err error)
}

// Middleware creates an HTTP middleware that counts one use per request and
// rejects requests once the identity's daily allowance is spent. Premium
// identities always pass.
func Middleware(config Config) func(http.Handler) http.Handler {
	if config.Tracker == nil {
		panic("usagekit/http: Config.Tracker is required")
	}
	if config.GetIdentity == nil {
		panic("usagekit/http: Config.GetIdentity is required")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := config.GetIdentity(r)
			if identity == "" {
				if config.OnUnauthorized != nil {
					config.OnUnauthorized(w, r)
				} else {
					http.Error(w, "Unauthorized", http.StatusUnauthorized)
				}
				return
			}

			result, err := config.Tracker.TryUse(r.Context(), identity)
			if err != nil {
				if config.OnError != nil {
					config.OnError(w, r, err)
				} else {
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
				return
			}

			if !result.Allowed {
				if config.OnQuotaExceeded != nil {
					config.OnQuotaExceeded(w, r, result)
				} else {
					msg := fmt.Sprintf("Daily limit reached: %d/%d uses",
						result.Record.Count, config.Tracker.DailyLimit())
					http.Error(w, msg, http.StatusTooManyRequests)
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// HandlerFunc creates an HTTP middleware that enforces the daily limit (HandlerFunc version)
func HandlerFunc(config Config) func(http.HandlerFunc) http.HandlerFunc {
	middleware := Middleware(config)
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			middleware(next).ServeHTTP(w, r)
		}
	}
}

// Common extractors for convenience

// IdentityFromHeader returns an IdentityExtractor that reads a header
func IdentityFromHeader(headerName string) IdentityExtractor {
	return func(r *http.Request) string {
		return r.Header.Get(headerName)
	}
}

// IdentityFromContext returns an IdentityExtractor that reads the request context
func IdentityFromContext(key interface{}) IdentityExtractor {
	return func(r *http.Request) string {
		if identity, ok := r.Context().Value(key).(string); ok {
			return identity
		}
		return ""
	}
}
