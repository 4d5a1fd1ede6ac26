// Package billing defines the payment-provider abstraction used to grant
// premium entitlements. A provider turns completed payments into tracker
// activations; the usage tracker itself never talks to a payment API.
package billing

import (
	"context"
	"net/http"
)

// Provider is the interface a payment backend must implement.
type Provider interface {
	// Name returns the provider name (e.g. "stripe").
	Name() string

	// CheckoutURL creates a hosted checkout session for the identity and
	// returns the URL the client should be redirected to.
	CheckoutURL(ctx context.Context, identity string) (string, error)

	// WebhookHandler returns the HTTP handler that processes payment events.
	// The implementation verifies signatures and activates premium on the
	// tracker internally.
	WebhookHandler() http.Handler
}
