// Package domain contains the core data types for the parking reservation
// engine. This package has zero external dependencies beyond uuid and is
// imported by every other internal package (repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a reservation.
type Status string

const (
	// StatusPending is the initial state: accepted but awaiting admin review.
	StatusPending Status = "pending"
	// StatusActive means the reservation was approved and blocks the resource.
	StatusActive Status = "active"
	// StatusRejected is terminal: an admin declined the reservation.
	StatusRejected Status = "rejected"
	// StatusCancelled is terminal: the requester or an admin withdrew it.
	StatusCancelled Status = "cancelled"
	// StatusCompleted is a derived terminal state once the window's end has
	// passed. It is computed lazily by EffectiveStatus and never persisted.
	StatusCompleted Status = "completed"
)

// transitions is the complete set of permitted status changes.
// Anything absent from this table is rejected by construction; there is no
// other place in the codebase that decides whether a transition is legal.
var transitions = map[Status]map[Status]bool{
	StatusPending: {
		StatusActive:    true,
		StatusRejected:  true,
		StatusCancelled: true,
	},
	StatusActive: {
		StatusCancelled: true,
	},
}

// CanTransition reports whether moving from one status to another is permitted.
func CanTransition(from, to Status) bool {
	return transitions[from][to]
}

// Blocking reports whether a reservation in this status occupies the
// resource's time axis. Only pending and active reservations participate in
// conflict checks; rejected and cancelled rows are kept for history but do
// not block anything.
func (s Status) Blocking() bool {
	return s == StatusPending || s == StatusActive
}

// BlockingStatuses is the status filter used by every conflict query.
var BlockingStatuses = []Status{StatusPending, StatusActive}

// Reservation is a single booking of a parking spot for a time window.
// Rows are never deleted; terminal reservations persist for history queries.
type Reservation struct {
	ID              uuid.UUID `json:"id"`
	ResourceID      string    `json:"resourceId"`
	RequesterID     string    `json:"requesterId"`
	Window          Window    `json:"window"`
	Status          Status    `json:"status"`
	RejectionReason string    `json:"rejectionReason,omitempty"` // set only when Status is rejected
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// EffectiveStatus returns the status as seen by callers at time now.
// An active reservation whose window has fully elapsed reads as completed.
// The persisted status is left untouched — completed is derived, not stored.
func (r Reservation) EffectiveStatus(now time.Time) Status {
	if r.Status == StatusActive && !now.Before(r.Window.End) {
		return StatusCompleted
	}
	return r.Status
}

// ReservationPatch carries the mutable fields of an update.
// Nil pointers mean "leave unchanged".
type ReservationPatch struct {
	Status          *Status
	RejectionReason *string
}

// Slot is one bucket in a day's availability view.
// Available is false when any pending or active reservation overlaps it.
type Slot struct {
	Window
	Available bool `json:"available"`
}
