// Package stripe implements the billing.Provider interface on top of Stripe
// Checkout. A completed checkout session activates premium on the tracker,
// keyed by the session's client reference ID.
package stripe

import (
	"strings"

	"github.com/stripe/stripe-go/v83"

	"github.com/summarihq/usagekit/pkg/billing"
	"github.com/summarihq/usagekit/pkg/usagekit"
)

const providerName = "stripe"

// Config configures the Stripe provider.
type Config struct {
	// APIKey is the Stripe secret key.
	APIKey string

	// WebhookSecret is the signing secret for the webhook endpoint.
	WebhookSecret string

	// PriceID is the Stripe price for the premium purchase.
	PriceID string

	// SuccessURL and CancelURL are where Checkout redirects the client.
	SuccessURL string
	CancelURL  string

	// Tracker receives premium activations when payments complete.
	Tracker *usagekit.Tracker

	// Logger for webhook processing. Defaults to usagekit.NoopLogger.
	Logger usagekit.Logger
}

// Provider implements billing.Provider for Stripe.
type Provider struct {
	config        Config
	client        *stripe.Client
	webhookSecret string
	logger        usagekit.Logger
}

// NewProvider creates a Stripe billing provider.
func NewProvider(config Config) (*Provider, error) {
	if config.Tracker == nil {
		return nil, billing.ErrProviderNotConfigured
	}

	apiKey := strings.TrimSpace(config.APIKey)
	if apiKey == "" {
		return nil, billing.ErrProviderNotConfigured
	}
	if config.PriceID == "" || config.SuccessURL == "" || config.CancelURL == "" {
		return nil, billing.ErrProviderNotConfigured
	}

	logger := config.Logger
	if logger == nil {
		logger = &usagekit.NoopLogger{}
	}

	return &Provider{
		config:        config,
		client:        stripe.NewClient(apiKey),
		webhookSecret: strings.TrimSpace(config.WebhookSecret),
		logger:        logger,
	}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return providerName
}
