package stripe

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v83"

	"github.com/summarihq/usagekit/pkg/billing"
)

// CheckoutURL creates a Stripe Checkout Session for the one-time premium
// purchase and returns its URL. The identity travels through the session as
// the client reference ID so the webhook handler can route the activation.
func (p *Provider) CheckoutURL(ctx context.Context, identity string) (string, error) {
	if identity == "" {
		return "", billing.ErrMissingIdentity
	}

	params := &stripe.CheckoutSessionCreateParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				Price:    stripe.String(p.config.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(p.config.SuccessURL),
		CancelURL:         stripe.String(p.config.CancelURL),
		ClientReferenceID: stripe.String(identity),
	}

	session, err := p.client.V1CheckoutSessions.Create(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}

	return session.URL, nil
}
