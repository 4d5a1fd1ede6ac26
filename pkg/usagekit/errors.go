package usagekit

import "errors"

var (
	// ErrRecordNotFound is returned by Storage.Load when no record exists
	// for the identity. The tracker treats it as "fresh identity", never as
	// a caller-visible failure.
	ErrRecordNotFound = errors.New("usage record not found")

	// ErrStorageUnavailable is returned when storage is unavailable
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrInvalidIdentity is returned for an empty identity key
	ErrInvalidIdentity = errors.New("invalid identity")
)
