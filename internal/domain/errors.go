package domain

import "errors"

// Sentinel errors for the domain layer.
var (
	ErrNotFound     = errors.New("domain: not found")
	ErrConflict     = errors.New("domain: conflict")
	ErrUnauthorized = errors.New("domain: unauthorized")
	ErrForbidden    = errors.New("domain: forbidden")

	// ErrInvalidScope marks a structural problem independent of authorization:
	// an orphaned sub-resource whose owning scope cannot be resolved, or a
	// client-supplied company that contradicts the resolved owner.
	ErrInvalidScope = errors.New("domain: invalid scope")

	// ErrLocked is returned when an account is under a login lockout window.
	ErrLocked = errors.New("domain: account locked")
)
