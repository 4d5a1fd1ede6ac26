package api

import (
	"fmt"
	"net/http"

	"github.com/summarihq/usagekit/pkg/billing"
	"github.com/summarihq/usagekit/pkg/summarize"
	"github.com/summarihq/usagekit/pkg/usagekit"
)

// Config holds configuration for the HTTP API handler
type Config struct {
	// Tracker is the usage tracker instance (required)
	Tracker *usagekit.Tracker

	// Summarizer produces summaries for POST /summarize.
	// If nil, the endpoint responds 503.
	Summarizer summarize.Service

	// Billing creates checkout sessions and processes payment webhooks.
	// If nil, the checkout and webhook endpoints respond 503.
	Billing billing.Provider

	// GetIdentity extracts the client identity from an HTTP request.
	// If nil, the X-Client-ID header is used.
	GetIdentity func(*http.Request) string

	// AllowReset enables POST /reset, which clears the caller's record.
	// Meant for test and staging deployments only.
	AllowReset bool

	// OnError handles internal errors. If nil, a JSON error body is written.
	OnError func(http.ResponseWriter, *http.Request, error)

	// Logger is optional. Defaults to usagekit.NoopLogger.
	Logger usagekit.Logger
}

// IdentityHeader is the default header carrying the client identity.
const IdentityHeader = "X-Client-ID"

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Tracker == nil {
		return fmt.Errorf("tracker is required")
	}
	return nil
}

// NewHandler creates a new API handler with the given configuration
func NewHandler(config Config) (*Handler, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if config.GetIdentity == nil {
		config.GetIdentity = FromHeader(IdentityHeader)
	}
	if config.Logger == nil {
		config.Logger = &usagekit.NoopLogger{}
	}
	return &Handler{
		config: config,
	}, nil
}

// FromHeader returns a GetIdentity function that reads a header
func FromHeader(headerName string) func(*http.Request) string {
	return func(r *http.Request) string {
		return r.Header.Get(headerName)
	}
}

// FromContext returns a GetIdentity function that reads the request context
func FromContext(key interface{}) func(*http.Request) string {
	return func(r *http.Request) string {
		if identity, ok := r.Context().Value(key).(string); ok {
			return identity
		}
		return ""
	}
}
