package usagekit

import (
	"context"
	"strings"
	"time"
)

// ActivatePremium validates a shared-code activation attempt. The submitted
// code is compared case-insensitively against the configured code. On match
// the record is promoted to premium and true is returned; on mismatch
// nothing changes and false is returned. There is no lockout or attempt
// counting on this path: the code is a shared coupon, not a per-user secret.
func (t *Tracker) ActivatePremium(ctx context.Context, identity, code string) (bool, error) {
	if !strings.EqualFold(code, t.config.ActivationCode) {
		t.config.Metrics.RecordActivation(ActivationMethodCode, false)
		return false, nil
	}

	_, err := t.mutate(ctx, identity, func(rec *UsageRecord) bool {
		t.grant(rec, "")
		return true
	})
	if err != nil {
		return false, err
	}

	t.config.Metrics.RecordActivation(ActivationMethodCode, true)
	t.config.Logger.Info("premium activated by code",
		Field{Key: "identity", Value: identity},
	)
	return true, nil
}

// ActivatePremiumWithCustomer unconditionally promotes the record to premium
// and records the payment-derived customer id. No authenticity check happens
// here: the payment-confirmation collaborator is trusted to call this only
// after verifying payment out of band.
func (t *Tracker) ActivatePremiumWithCustomer(ctx context.Context, identity, customerID string) error {
	_, err := t.mutate(ctx, identity, func(rec *UsageRecord) bool {
		t.grant(rec, customerID)
		return true
	})
	if err != nil {
		return err
	}

	t.config.Metrics.RecordActivation(ActivationMethodCustomer, true)
	t.config.Logger.Info("premium activated by customer",
		Field{Key: "identity", Value: identity},
		Field{Key: "customer_id", Value: customerID},
	)
	return nil
}

// IsPremiumActive reports whether identity currently holds a premium
// entitlement.
func (t *Tracker) IsPremiumActive(ctx context.Context, identity string) (bool, error) {
	rec, err := t.GetUsageData(ctx, identity)
	if err != nil {
		return false, err
	}
	return rec.IsPremium, nil
}

// grant promotes a record to premium. Never downgrades.
func (t *Tracker) grant(rec *UsageRecord, customerID string) {
	rec.IsPremium = true
	if customerID != "" {
		rec.CustomerID = customerID
	}
	rec.ActivatedAt = t.config.Clock().UTC().Format(time.RFC3339)
}
