package usagekit

import (
	"time"
)

const (
	// DefaultDailyLimit is the number of free summaries per day.
	DefaultDailyLimit = 3

	// Unlimited is the sentinel Remaining value for premium identities.
	// It is never interpreted as a numeric budget.
	Unlimited = -1

	// dayKeyLayout is the day-granularity format stored in LastReset.
	// Rollover is a plain string comparison against the current local date.
	dayKeyLayout = "2006-01-02"
)

// defaultActivationCode is the shared coupon code of the reference deployment.
// It is a known-weak shared secret kept for compatibility; override it via
// Config.ActivationCode in any real deployment.
const defaultActivationCode = "koskelo123"

// UsageRecord is the per-identity usage and entitlement state.
type UsageRecord struct {
	// Count is the number of metered actions used since the last reset.
	Count int `json:"count"`

	// LastReset is the local calendar date (day granularity) of the last
	// counter reset.
	LastReset string `json:"lastReset"`

	// IsPremium marks an unlimited identity. Once set by a valid activation
	// nothing in the quota path clears it.
	IsPremium bool `json:"isPremium"`

	// CustomerID is the opaque payment-derived customer identifier, set only
	// by ActivatePremiumWithCustomer.
	CustomerID string `json:"customerId,omitempty"`

	// ActivatedAt is the RFC 3339 timestamp of when IsPremium became true.
	ActivatedAt string `json:"activatedAt,omitempty"`
}

// Allowance is the result of a quota check.
type Allowance struct {
	// Allowed reports whether the next metered action may proceed.
	Allowed bool `json:"allowed"`

	// Remaining is the number of actions left today, or Unlimited (-1)
	// for premium identities.
	Remaining int `json:"remaining"`
}

// UseResult is the outcome of an atomic TryUse operation.
type UseResult struct {
	// Allowed reports whether the use was counted.
	Allowed bool

	// Remaining is the allowance left after the use (Unlimited for premium).
	Remaining int

	// Record is the record after the operation.
	Record *UsageRecord
}

// Clock supplies the current time. "Today" is whatever the clock's local
// date reports; no timezone conversion is performed.
type Clock func() time.Time

// Config holds tracker configuration.
type Config struct {
	// DailyLimit is the free-tier daily allowance (default: DefaultDailyLimit).
	DailyLimit int

	// ActivationCode is the shared premium code, compared case-insensitively
	// (default: the reference deployment code).
	ActivationCode string

	// Logger is used for structured logging (default: NoopLogger).
	Logger Logger

	// Metrics is used for tracking quota operations (default: NoopMetrics).
	Metrics Metrics

	// Clock overrides the time source (default: time.Now). Used by tests to
	// exercise day boundaries.
	Clock Clock
}

// NewRecord returns a freshly-initialized record for the given day.
func NewRecord(today string) *UsageRecord {
	return &UsageRecord{
		Count:     0,
		LastReset: today,
		IsPremium: false,
	}
}

// DayKey returns the day-granularity key for t in t's location.
func DayKey(t time.Time) string {
	return t.Format(dayKeyLayout)
}
