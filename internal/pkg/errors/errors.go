package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing, soft-deleted or cross-tenant resources.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConflict is returned when a uniqueness rule rejects a write.
	ErrConflict = errors.New("conflict")
)
