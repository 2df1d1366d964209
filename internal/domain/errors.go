package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for simple conditions without extra context.
var (
	ErrTenantNotFound = errors.New("tenant not found")
	ErrRecordNotFound = errors.New("record not found")
	ErrInvalidInput   = errors.New("invalid input")

	// ErrTenantNotInitialized is reported when a store or scoped repository is
	// used before a tenant is bound. It is expected during bootstrap.
	ErrTenantNotInitialized = errors.New("tenant not initialized: call InitializeTenant first")

	// ErrSuperseded is returned to a LoadTenant caller whose resolution
	// completed after a newer request had been issued.
	ErrSuperseded = errors.New("tenant resolution superseded by a newer request")
)

// SlugFormatError is returned when a slug fails client-side validation.
// It never involves a network call.
type SlugFormatError struct {
	Slug   string
	Reason string
}

func (e *SlugFormatError) Error() string {
	return fmt.Sprintf("invalid slug %q: %s", e.Slug, e.Reason)
}

// ResolutionError wraps a transport or backend failure while resolving a slug.
// It is distinct from ErrTenantNotFound: callers should offer a retry, not redirect.
type ResolutionError struct {
	Slug string
	Err  error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolving tenant %q: %v", e.Slug, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// MutationError is returned when a create, update or delete fails in the
// backing repository.
type MutationError struct {
	Op         string
	Collection string
	Err        error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *MutationError) Unwrap() error { return e.Err }

// SlugConflictError is returned when a tenant slug is already in use.
type SlugConflictError struct {
	Slug string
}

func (e *SlugConflictError) Error() string {
	return fmt.Sprintf("slug %q is already in use", e.Slug)
}

// TransitionError is returned when a state transition is not allowed.
type TransitionError struct {
	Event   Event
	Current State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("event %q is not valid from state %q", e.Event, e.Current)
}

// IsNotFound reports whether err is an authoritative "no such tenant".
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTenantNotFound)
}
