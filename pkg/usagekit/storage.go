package usagekit

import "context"

// UpdateFunc transforms the stored payload for one identity inside the
// backend's per-identity critical section. current is nil when no record
// exists. Returning a nil next payload leaves the stored value unchanged.
type UpdateFunc func(current []byte) (next []byte, err error)

// Storage defines the interface for usage record persistence. Records are
// opaque flat JSON payloads; validation and repair happen in the tracker so
// every backend shares the same recovery semantics.
//
// Update must be atomic per identity: two concurrent Update calls for the
// same identity must serialize, while unrelated identities proceed in
// parallel. This is what makes the check-then-increment path safe under
// concurrent requests.
type Storage interface {
	// Load retrieves the stored payload for identity.
	// Returns ErrRecordNotFound when no record exists.
	Load(ctx context.Context, identity string) ([]byte, error)

	// Save persists the payload, overwriting any prior value.
	Save(ctx context.Context, identity string, payload []byte) error

	// Clear deletes the stored record. Used only by the testing-reset path.
	Clear(ctx context.Context, identity string) error

	// Update applies fn to the stored payload atomically per identity.
	// It returns the payload that is stored after the call (the original
	// one when fn returned nil).
	Update(ctx context.Context, identity string, fn UpdateFunc) ([]byte, error)
}
