package usagekit

import (
	"context"
	"time"
)

// Tracker decides, per identity, whether the next metered action is allowed,
// counts successful uses, and manages premium entitlements. All decision
// logic lives here; persistence is delegated to the injected Storage.
type Tracker struct {
	storage Storage
	config  Config
}

// NewTracker creates a new tracker with the given storage and configuration.
func NewTracker(storage Storage, config Config) (*Tracker, error) {
	if storage == nil {
		return nil, ErrStorageUnavailable
	}

	// Set defaults
	if config.DailyLimit == 0 {
		config.DailyLimit = DefaultDailyLimit
	}
	if config.ActivationCode == "" {
		config.ActivationCode = defaultActivationCode
	}
	if config.Logger == nil {
		config.Logger = &NoopLogger{}
	}
	if config.Metrics == nil {
		config.Metrics = &NoopMetrics{}
	}
	if config.Clock == nil {
		config.Clock = time.Now
	}

	return &Tracker{
		storage: storage,
		config:  config,
	}, nil
}

// DailyLimit returns the configured free-tier daily limit.
func (t *Tracker) DailyLimit() int {
	return t.config.DailyLimit
}

// Allowance computes the allowance a record grants without touching storage.
func (t *Tracker) Allowance(rec *UsageRecord) Allowance {
	return t.allowanceFor(rec)
}

// today returns the day key of the configured clock's current local date.
func (t *Tracker) today() string {
	return DayKey(t.config.Clock())
}

// mutate runs fn against the repaired, rolled-over record for identity inside
// the storage backend's per-identity critical section. fn returns whether it
// changed the record. The repaired/rolled-over record is written back even
// when fn changes nothing, so load-style calls heal persisted state too.
func (t *Tracker) mutate(ctx context.Context, identity string, fn func(rec *UsageRecord) bool) (*UsageRecord, error) {
	if identity == "" {
		return nil, ErrInvalidIdentity
	}

	today := t.today()
	var out *UsageRecord

	start := time.Now()
	_, err := t.storage.Update(ctx, identity, func(current []byte) ([]byte, error) {
		rec, dirty := t.openRecord(identity, current, today)

		if fn != nil && fn(rec) {
			dirty = true
		}

		out = rec
		if !dirty {
			return nil, nil
		}
		return encodeRecord(rec)
	})
	t.config.Metrics.RecordStorageOperation("update", time.Since(start), err)
	if err != nil {
		return nil, err
	}

	return out, nil
}

// openRecord decodes the current payload, repairing corruption and applying
// the daily rollover. It reports whether the record differs from what is
// stored and must be written back.
func (t *Tracker) openRecord(identity string, current []byte, today string) (*UsageRecord, bool) {
	if current == nil {
		return NewRecord(today), true
	}

	rec, repairReason := decodeRecord(current, today)
	if repairReason != "" {
		t.config.Metrics.RecordRepair(repairReason)
		t.config.Logger.Warn("repaired corrupt usage record",
			Field{Key: "identity", Value: identity},
			Field{Key: "reason", Value: repairReason},
		)
	}

	rolled := rollover(rec, today)
	if rolled {
		t.config.Metrics.RecordRollover(identity)
		t.config.Logger.Debug("daily usage counter reset",
			Field{Key: "identity", Value: identity},
			Field{Key: "day", Value: today},
		)
	}

	return rec, repairReason != "" || rolled
}

// GetUsageData returns the current record for identity, creating a fresh one
// on first access. Corruption is healed and the day boundary applied before
// the record is returned, so the call may itself write back persisted state.
func (t *Tracker) GetUsageData(ctx context.Context, identity string) (*UsageRecord, error) {
	return t.mutate(ctx, identity, nil)
}

// CanUseService reports whether the next metered action is allowed and how
// many actions remain today. Premium identities always get
// {Allowed: true, Remaining: Unlimited}.
func (t *Tracker) CanUseService(ctx context.Context, identity string) (Allowance, error) {
	start := time.Now()

	rec, err := t.GetUsageData(ctx, identity)
	if err != nil {
		return Allowance{}, err
	}

	allowance := t.allowanceFor(rec)
	t.config.Metrics.RecordAllowanceCheck(identity, allowance.Allowed, time.Since(start))
	return allowance, nil
}

// IncrementUsage records one successful metered use and returns the updated
// record. It does not re-validate the limit: callers owning the
// check-then-act sequence must have seen Allowed first, or use TryUse.
// Premium identities are still counted for bookkeeping.
func (t *Tracker) IncrementUsage(ctx context.Context, identity string) (*UsageRecord, error) {
	rec, err := t.mutate(ctx, identity, func(rec *UsageRecord) bool {
		rec.Count++
		return true
	})
	if err != nil {
		return nil, err
	}

	t.config.Metrics.RecordUse(identity, rec.IsPremium)
	return rec, nil
}

// TryUse atomically combines the allowance check with the increment: the
// use is counted only if the identity still has allowance, all inside the
// storage backend's per-identity exclusion. A denied use is a normal
// outcome, not an error.
func (t *Tracker) TryUse(ctx context.Context, identity string) (*UseResult, error) {
	var allowed bool

	rec, err := t.mutate(ctx, identity, func(rec *UsageRecord) bool {
		if !t.allowanceFor(rec).Allowed {
			allowed = false
			return false
		}
		allowed = true
		rec.Count++
		return true
	})
	if err != nil {
		return nil, err
	}

	if allowed {
		t.config.Metrics.RecordUse(identity, rec.IsPremium)
	}
	allowance := t.allowanceFor(rec)
	return &UseResult{
		Allowed:   allowed,
		Remaining: allowance.Remaining,
		Record:    rec,
	}, nil
}

// ResetForTesting discards the record entirely, restoring the identity to
// its initial unactivated state on next access. Destructive;
// development/test use only.
func (t *Tracker) ResetForTesting(ctx context.Context, identity string) error {
	if identity == "" {
		return ErrInvalidIdentity
	}

	start := time.Now()
	err := t.storage.Clear(ctx, identity)
	t.config.Metrics.RecordStorageOperation("clear", time.Since(start), err)
	if err != nil {
		return err
	}

	t.config.Logger.Info("usage record reset",
		Field{Key: "identity", Value: identity},
	)
	return nil
}

// allowanceFor computes the allowance for an already rolled-over record.
func (t *Tracker) allowanceFor(rec *UsageRecord) Allowance {
	if rec.IsPremium {
		return Allowance{Allowed: true, Remaining: Unlimited}
	}

	remaining := t.config.DailyLimit - rec.Count
	if remaining < 0 {
		remaining = 0
	}
	return Allowance{Allowed: remaining > 0, Remaining: remaining}
}
