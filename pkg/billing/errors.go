package billing

import "errors"

var (
	// ErrProviderNotConfigured is returned when a provider is missing required configuration
	ErrProviderNotConfigured = errors.New("billing provider not configured")

	// ErrInvalidWebhookSignature is returned when webhook signature validation fails
	ErrInvalidWebhookSignature = errors.New("invalid webhook signature")

	// ErrInvalidWebhookPayload is returned when a webhook payload cannot be parsed
	ErrInvalidWebhookPayload = errors.New("invalid webhook payload")

	// ErrMissingIdentity is returned when a payment event carries no client identity
	ErrMissingIdentity = errors.New("payment event has no client identity")
)
