package domain

import "errors"

// Sentinel errors shared across services and repositories.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")

	// ErrCapacityExceeded indicates the confirmed count for an event went past
	// its capacity. With the per-event transaction scope this is an internal
	// invariant break, not a user-facing condition.
	ErrCapacityExceeded = errors.New("event capacity exceeded")
)
