package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/stripe/stripe-go/v83"

	"github.com/summarihq/usagekit/pkg/billing"
	"github.com/summarihq/usagekit/pkg/billing/internal"
	"github.com/summarihq/usagekit/pkg/usagekit"
)

const maxWebhookBody = 256 * 1024

// WebhookHandler returns the HTTP handler for Stripe webhook events.
func (p *Provider) WebhookHandler() http.Handler {
	return http.HandlerFunc(p.handleWebhook)
}

func (p *Provider) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if p.webhookSecret == "" {
		http.Error(w, "webhook not configured", http.StatusServiceUnavailable)
		return
	}

	body, err := internal.ReadBodyStrict(w, r, maxWebhookBody)
	if err != nil {
		if errors.Is(err, internal.ErrPayloadTooLarge) {
			http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
		} else {
			http.Error(w, "invalid payload", http.StatusBadRequest)
		}
		return
	}

	sig := r.Header.Get("Stripe-Signature")
	event, err := stripe.ConstructEvent(body, sig, p.webhookSecret)
	if err != nil {
		p.logger.Warn("webhook signature verification failed",
			usagekit.Field{Key: "error", Value: err.Error()})
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if err := p.processEvent(r.Context(), &event); err != nil {
		p.logger.Error("webhook processing failed",
			usagekit.Field{Key: "event_type", Value: string(event.Type)},
			usagekit.Field{Key: "error", Value: err.Error()})
		http.Error(w, "failed to process webhook", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (p *Provider) processEvent(ctx context.Context, event *stripe.Event) error {
	switch event.Type {
	case "checkout.session.completed":
		return p.handleCheckoutCompleted(ctx, event)
	default:
		// Unknown event type, acknowledge without acting
		return nil
	}
}

// handleCheckoutCompleted activates premium for the identity that started the
// checkout. Activation is idempotent on the tracker side, so Stripe's
// at-least-once delivery needs no dedup here.
func (p *Provider) handleCheckoutCompleted(ctx context.Context, event *stripe.Event) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return fmt.Errorf("%w: checkout session: %s", billing.ErrInvalidWebhookPayload, err)
	}

	identity := session.ClientReferenceID
	if identity == "" {
		return fmt.Errorf("checkout session %s: %w", session.ID, billing.ErrMissingIdentity)
	}

	customerID := ""
	if session.Customer != nil {
		customerID = session.Customer.ID
	}

	if err := p.config.Tracker.ActivatePremiumWithCustomer(ctx, identity, customerID); err != nil {
		return fmt.Errorf("failed to activate premium: %w", err)
	}

	p.logger.Info("premium activated from checkout",
		usagekit.Field{Key: "identity", Value: identity},
		usagekit.Field{Key: "customer_id", Value: customerID},
		usagekit.Field{Key: "session_id", Value: session.ID})

	return nil
}
