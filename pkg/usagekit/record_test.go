package usagekit

import (
	"testing"
)

const testToday = "2026-08-29"

func TestDecodeRecord_WellFormed(t *testing.T) {
	payload := []byte(`{"count":2,"lastReset":"2026-08-28","isPremium":true,"customerId":"cus_123","activatedAt":"2026-08-20T10:00:00Z"}`)

	rec, reason := decodeRecord(payload, testToday)
	if reason != "" {
		t.Errorf("Expected no repair, got reason %q", reason)
	}
	if rec.Count != 2 {
		t.Errorf("Expected count 2, got %d", rec.Count)
	}
	if rec.LastReset != "2026-08-28" {
		t.Errorf("Expected lastReset 2026-08-28, got %s", rec.LastReset)
	}
	if !rec.IsPremium {
		t.Error("Expected isPremium true")
	}
	if rec.CustomerID != "cus_123" {
		t.Errorf("Expected customerId cus_123, got %s", rec.CustomerID)
	}
	if rec.ActivatedAt != "2026-08-20T10:00:00Z" {
		t.Errorf("Expected activatedAt preserved, got %s", rec.ActivatedAt)
	}
}

func TestDecodeRecord_Unparseable(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"garbage", `not json at all {{`},
		{"truncated", `{"count": 1,`},
		{"null", `null`},
		{"array", `[1,2,3]`},
		{"string", `"count"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, reason := decodeRecord([]byte(tt.payload), testToday)
			if reason != RepairReasonUnparseable {
				t.Errorf("Expected unparseable repair, got %q", reason)
			}
			want := NewRecord(testToday)
			if *rec != *want {
				t.Errorf("Expected fresh record %+v, got %+v", want, rec)
			}
		})
	}
}

func TestDecodeRecord_FieldLevelRepair(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		check   func(t *testing.T, rec *UsageRecord)
	}{
		{
			name:    "negative count",
			payload: `{"count":-5,"lastReset":"2026-08-29","isPremium":true}`,
			check: func(t *testing.T, rec *UsageRecord) {
				if rec.Count != 0 {
					t.Errorf("Expected count 0, got %d", rec.Count)
				}
				if !rec.IsPremium {
					t.Error("Expected well-formed isPremium to be preserved")
				}
			},
		},
		{
			name:    "non-numeric count",
			payload: `{"count":"three","lastReset":"2026-08-29","isPremium":false}`,
			check: func(t *testing.T, rec *UsageRecord) {
				if rec.Count != 0 {
					t.Errorf("Expected count 0, got %d", rec.Count)
				}
				if rec.LastReset != "2026-08-29" {
					t.Errorf("Expected lastReset preserved, got %s", rec.LastReset)
				}
			},
		},
		{
			name:    "fractional count",
			payload: `{"count":1.5,"lastReset":"2026-08-29","isPremium":false}`,
			check: func(t *testing.T, rec *UsageRecord) {
				if rec.Count != 0 {
					t.Errorf("Expected count 0, got %d", rec.Count)
				}
			},
		},
		{
			name:    "invalid date",
			payload: `{"count":2,"lastReset":"yesterday","isPremium":false}`,
			check: func(t *testing.T, rec *UsageRecord) {
				if rec.LastReset != testToday {
					t.Errorf("Expected lastReset defaulted to today, got %s", rec.LastReset)
				}
				if rec.Count != 2 {
					t.Errorf("Expected count preserved, got %d", rec.Count)
				}
			},
		},
		{
			name:    "non-boolean premium",
			payload: `{"count":1,"lastReset":"2026-08-29","isPremium":"yes"}`,
			check: func(t *testing.T, rec *UsageRecord) {
				if rec.IsPremium {
					t.Error("Expected isPremium defaulted to false")
				}
			},
		},
		{
			name:    "non-string customer id",
			payload: `{"count":1,"lastReset":"2026-08-29","isPremium":true,"customerId":42}`,
			check: func(t *testing.T, rec *UsageRecord) {
				if rec.CustomerID != "" {
					t.Errorf("Expected customerId absent, got %s", rec.CustomerID)
				}
				if !rec.IsPremium {
					t.Error("Expected isPremium preserved")
				}
			},
		},
		{
			name:    "missing fields",
			payload: `{}`,
			check: func(t *testing.T, rec *UsageRecord) {
				want := NewRecord(testToday)
				if *rec != *want {
					t.Errorf("Expected fresh record %+v, got %+v", want, rec)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, reason := decodeRecord([]byte(tt.payload), testToday)
			if reason != RepairReasonField {
				t.Errorf("Expected field-level repair, got %q", reason)
			}
			tt.check(t, rec)
		})
	}
}

func TestDecodeRecord_IgnoresUnknownFields(t *testing.T) {
	payload := []byte(`{"count":1,"lastReset":"2026-08-29","isPremium":false,"futureField":{"a":1}}`)

	rec, reason := decodeRecord(payload, testToday)
	if reason != "" {
		t.Errorf("Expected no repair for unknown fields, got %q", reason)
	}
	if rec.Count != 1 {
		t.Errorf("Expected count 1, got %d", rec.Count)
	}
}

func TestEncodeRecord_RoundTrip(t *testing.T) {
	rec := &UsageRecord{
		Count:       2,
		LastReset:   testToday,
		IsPremium:   true,
		CustomerID:  "cus_123",
		ActivatedAt: "2026-08-29T10:00:00Z",
	}

	payload, err := encodeRecord(rec)
	if err != nil {
		t.Fatalf("encodeRecord failed: %v", err)
	}

	got, reason := decodeRecord(payload, testToday)
	if reason != "" {
		t.Errorf("Expected clean decode of own encoding, got repair %q", reason)
	}
	if *got != *rec {
		t.Errorf("Round trip mismatch: expected %+v, got %+v", rec, got)
	}
}

func TestEncodeRecord_OmitsAbsentOptionalFields(t *testing.T) {
	payload, err := encodeRecord(NewRecord(testToday))
	if err != nil {
		t.Fatalf("encodeRecord failed: %v", err)
	}

	want := `{"count":0,"lastReset":"2026-08-29","isPremium":false}`
	if string(payload) != want {
		t.Errorf("Expected %s, got %s", want, payload)
	}
}

func TestRollover(t *testing.T) {
	rec := &UsageRecord{
		Count:       3,
		LastReset:   "2026-08-28",
		IsPremium:   true,
		CustomerID:  "cus_123",
		ActivatedAt: "2026-08-20T10:00:00Z",
	}

	if !rollover(rec, testToday) {
		t.Error("Expected rollover across day boundary")
	}
	if rec.Count != 0 {
		t.Errorf("Expected count reset, got %d", rec.Count)
	}
	if rec.LastReset != testToday {
		t.Errorf("Expected lastReset advanced, got %s", rec.LastReset)
	}
	if !rec.IsPremium || rec.CustomerID != "cus_123" || rec.ActivatedAt != "2026-08-20T10:00:00Z" {
		t.Error("Expected premium fields untouched by rollover")
	}

	// Idempotent: a second application on the same day is a no-op
	before := *rec
	if rollover(rec, testToday) {
		t.Error("Expected second rollover on the same day to be a no-op")
	}
	if *rec != before {
		t.Errorf("Expected record unchanged, got %+v", rec)
	}
}
