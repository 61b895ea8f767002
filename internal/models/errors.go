package models

import "errors"

var (
	// ErrNotFound is returned when a subject or record identifier does not resolve.
	ErrNotFound = errors.New("not found")

	// ErrUnauthenticated marks an operation attempted without a signed-in user.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrConflict is returned when a storage race could not be resolved.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput is returned when submitted fields fail validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidDirection is returned for vote directions other than +1 and -1.
	ErrInvalidDirection = errors.New("invalid vote direction")
)
