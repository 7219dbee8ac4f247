package domain

import "errors"

var (
	// ErrAlreadyExists is returned when a create or update would give a second
	// record the same constrained value. Soft-deleted records count.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotFound is returned when an identity does not resolve to a live record.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is returned when proof of the current credential fails.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrTooManyAttempts is returned when the login window for an identifier is exhausted.
	ErrTooManyAttempts = errors.New("too many attempts")
)
