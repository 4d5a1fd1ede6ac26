package usagekit

import (
	"encoding/json"
	"time"
)

// decodeRecord parses a stored payload with field-level tolerance.
//
// An unparseable payload (or one whose top level is not an object) is
// discarded and replaced with a fresh record. When the top level parses,
// each field is defaulted independently: a partially-corrupt record is
// repaired rather than wholly discarded. Unknown fields are ignored.
//
// The returned reason is RepairReasonUnparseable or RepairReasonField when
// something was repaired, and empty otherwise.
func decodeRecord(payload []byte, today string) (rec *UsageRecord, reason string) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil || raw == nil {
		return NewRecord(today), RepairReasonUnparseable
	}

	rec = NewRecord(today)
	repaired := false

	var count float64
	if err := json.Unmarshal(raw["count"], &count); err == nil &&
		count >= 0 && count == float64(int(count)) {
		rec.Count = int(count)
	} else {
		repaired = true
	}

	var lastReset string
	if err := json.Unmarshal(raw["lastReset"], &lastReset); err == nil && validDayKey(lastReset) {
		rec.LastReset = lastReset
	} else {
		repaired = true
	}

	var isPremium bool
	if err := json.Unmarshal(raw["isPremium"], &isPremium); err == nil {
		rec.IsPremium = isPremium
	} else {
		repaired = true
	}

	// Optional fields: absent is fine, only a present-but-wrong type counts
	// as a repair.
	if v, ok := raw["customerId"]; ok {
		var customerID string
		if err := json.Unmarshal(v, &customerID); err == nil {
			rec.CustomerID = customerID
		} else {
			repaired = true
		}
	}
	if v, ok := raw["activatedAt"]; ok {
		var activatedAt string
		if err := json.Unmarshal(v, &activatedAt); err == nil {
			rec.ActivatedAt = activatedAt
		} else {
			repaired = true
		}
	}

	if repaired {
		return rec, RepairReasonField
	}
	return rec, ""
}

// encodeRecord serializes a record as the flat JSON payload stored per
// identity.
func encodeRecord(rec *UsageRecord) ([]byte, error) {
	return json.Marshal(rec)
}

// rollover resets the counter when the stored date no longer matches today.
// It is idempotent: applying it twice in the same day is a no-op. Premium
// status, customer id and activation time are never touched.
func rollover(rec *UsageRecord, today string) bool {
	if rec.LastReset == today {
		return false
	}
	rec.Count = 0
	rec.LastReset = today
	return true
}

func validDayKey(s string) bool {
	_, err := time.Parse(dayKeyLayout, s)
	return err == nil
}
