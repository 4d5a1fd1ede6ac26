// Package gin provides Gin middleware for daily usage enforcement
package gin

import (
	"net/http"

	gongin "github.com/gin-gonic/gin"

	"github.com/summarihq/usagekit/pkg/usagekit"
)

// IdentityExtractor extracts the client identity from a Gin context.
// Return empty string if the client is not identified.
type IdentityExtractor func(c *gongin.Context) string

// Config holds middleware configuration
type Config struct {
	// Tracker is the usage tracker instance (required)
	Tracker *usagekit.Tracker

	// GetIdentity extracts the client identity from the context (required)
	GetIdentity IdentityExtractor

	// QuotaExceededStatusCode is the status returned when the limit is reached
	// Default: 429 (Too Many Requests)
	QuotaExceededStatusCode int

	// OnQuotaExceeded is called when the daily limit is reached
	// If nil, responds QuotaExceededStatusCode with a JSON usage body
	OnQuotaExceeded func(c *gongin.Context, result *usagekit.UseResult)

	// OnUnauthorized is called when no identity is present
	// If nil, returns 401 Unauthorized
	OnUnauthorized func(c *gongin.Context)

	// OnError is called when an internal error occurs
	// If nil, returns 500 Internal Server Error
	OnError func(c *gongin.Context, err error)
}

// Middleware creates a Gin middleware that counts one use per request and
// rejects requests once the identity's daily allowance is spent. Premium
// identities always pass.
func Middleware(cfg Config) gongin.HandlerFunc {
	if cfg.Tracker == nil {
		panic("usagekit/gin: Config.Tracker is required")
	}
	if cfg.GetIdentity == nil {
		panic("usagekit/gin: Config.GetIdentity is required")
	}
	if cfg.QuotaExceededStatusCode == 0 {
		cfg.QuotaExceededStatusCode = http.StatusTooManyRequests
	}

	return func(c *gongin.Context) {
		identity := cfg.GetIdentity(c)
		if identity == "" {
			if cfg.OnUnauthorized != nil {
				cfg.OnUnauthorized(c)
			} else {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gongin.H{
					"error": "unauthorized",
				})
			}
			c.Abort()
			return
		}

		result, err := cfg.Tracker.TryUse(c.Request.Context(), identity)
		if err != nil {
			if cfg.OnError != nil {
				cfg.OnError(c, err)
			} else {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gongin.H{
					"error": "internal server error",
				})
			}
			c.Abort()
			return
		}

		if !result.Allowed {
			if cfg.OnQuotaExceeded != nil {
				cfg.OnQuotaExceeded(c, result)
			} else {
				c.AbortWithStatusJSON(cfg.QuotaExceededStatusCode, gongin.H{
					"error":     "daily limit reached",
					"count":     result.Record.Count,
					"limit":     cfg.Tracker.DailyLimit(),
					"remaining": result.Remaining,
				})
			}
			c.Abort()
			return
		}

		c.Next()
	}
}

// Common extractors for convenience

// IdentityFromHeader returns an IdentityExtractor that reads a header
func IdentityFromHeader(headerName string) IdentityExtractor {
	return func(c *gongin.Context) string {
		return c.GetHeader(headerName)
	}
}

// IdentityFromKey returns an IdentityExtractor that reads a Gin context key,
// typically set by an auth middleware
func IdentityFromKey(key string) IdentityExtractor {
	return func(c *gongin.Context) string {
		if identity, ok := c.Get(key); ok {
			if s, ok := identity.(string); ok {
				return s
			}
		}
		return ""
	}
}
