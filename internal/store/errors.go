package store

import "errors"

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a referenced record no longer exists,
	// for example because it was moved or deleted out from under the
	// caller. Never fatal to the processing loop.
	ErrNotFound = errors.New("record not found")

	// ErrIO is returned when the underlying storage operation fails.
	// Callers treat it as a retryable attempt failure.
	ErrIO = errors.New("storage operation failed")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a uniquely-identified record.
	ErrDuplicate = errors.New("record already exists")
)

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
