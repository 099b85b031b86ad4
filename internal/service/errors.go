package service

import "errors"

// Domain errors surfaced to callers. The HTTP layer maps each one to a
// response status; none of them is fatal.
var (
	// ErrNotFound is returned when a requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the access policy denies the requester.
	ErrForbidden = errors.New("access denied")

	// ErrInvalidOperation is returned on a role conflict, e.g. an
	// organizer trying to act as a participant of their own event.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrConflict is returned when a participation record already exists
	// for the (event, user) pair.
	ErrConflict = errors.New("already exists")

	// ErrValidation is returned for malformed input, e.g. an unknown
	// participation status.
	ErrValidation = errors.New("validation failed")
)
