package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// reservation does not exist in the store.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrInvalidWindow is returned when a requested window is malformed,
// i.e. its end is not strictly after its start.
// Handlers should map this to HTTP 400.
var ErrInvalidWindow = errors.New("invalid window")

// ErrConflict is returned by Approve when an overlapping reservation was
// activated for the same resource since the original accept-time check.
// Handlers should map this to HTTP 409.
//
// A conflicted create is NOT an error: CreateReservation returns a
// CreateResult carrying an alternative window instead.
var ErrConflict = errors.New("reservation conflict")

// ErrInvalidTransition is returned when a status change is not permitted by
// the transition table (e.g. approving an already-rejected reservation).
// Handlers should map this to HTTP 409.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrUnauthorized is returned by Cancel when the caller is neither the
// reservation's requester nor the administrative identity.
// Handlers should map this to HTTP 403.
var ErrUnauthorized = errors.New("unauthorized")
