package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrLockHeld is returned by the slot-lock repository when another
	// request holds a bucket lock for the same restaurant window.
	ErrLockHeld = errors.New("slot lock held by another request")
)
