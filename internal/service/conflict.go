// Package service contains the business logic for the parking reservation
// engine. Services validate inputs, enforce the lifecycle rules, and
// orchestrate repo calls. No storage access lives here — services depend on
// repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/openspot/parking/backend/internal/domain"
	"github.com/openspot/parking/backend/internal/repo"
)

// DefaultBuffer is the gap inserted between an existing reservation's end and
// the start proposed by FindAlternative.
const DefaultBuffer = 15 * time.Minute

// ConflictChecker answers two questions about a resource's time axis:
// whether a requested window collides with any blocking reservation, and
// where the next collision-free window of the same duration starts.
type ConflictChecker struct {
	reservations repo.ReservationRepo
	buffer       time.Duration
}

// NewConflictChecker constructs a ConflictChecker backed by the provided repo.
// A non-positive buffer falls back to DefaultBuffer.
func NewConflictChecker(reservations repo.ReservationRepo, buffer time.Duration) *ConflictChecker {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &ConflictChecker{reservations: reservations, buffer: buffer}
}

// HasConflict reports whether any pending or active reservation for the
// resource overlaps the window. Pure read, no side effects.
//
// A repo failure is returned as an error, never folded into the boolean:
// "could not check" and "conflict found" are different answers, and callers
// surface them differently.
func (c *ConflictChecker) HasConflict(ctx context.Context, resourceID string, window domain.Window) (bool, error) {
	existing, err := c.reservations.ListByResource(ctx, resourceID, domain.BlockingStatuses)
	if err != nil {
		return false, fmt.Errorf("service.ConflictChecker.HasConflict: %w", err)
	}
	for _, res := range existing {
		if res.Window.Overlaps(window) {
			return true, nil
		}
	}
	return false, nil
}

// HasConflictExcluding re-validates a reservation against its siblings
// immediately before approval, leaving the reservation itself out of the
// scan. Only active siblings block here: pending reservations may overlap
// each other freely, and of two overlapping pendings the first one approved
// wins. Scanning pendings too would deadlock the pair, with neither ever
// approvable.
func (c *ConflictChecker) HasConflictExcluding(ctx context.Context, res domain.Reservation) (bool, error) {
	existing, err := c.reservations.ListByResource(ctx, res.ResourceID, []domain.Status{domain.StatusActive})
	if err != nil {
		return false, fmt.Errorf("service.ConflictChecker.HasConflictExcluding: %w", err)
	}
	for _, other := range existing {
		if other.ID == res.ID {
			continue
		}
		if other.Window.Overlaps(res.Window) {
			return true, nil
		}
	}
	return false, nil
}

// FindAlternative proposes the earliest window of the same duration as
// requested that clears every blocking reservation for the resource.
//
// The search is a single left-to-right sweep over the reservations sorted by
// start (the repo guarantees that ordering): the candidate window begins at
// the requested start, and whenever it collides with a reservation it jumps
// to that reservation's end plus the buffer. Because the cursor only ever
// moves forward and the list is start-ordered, one pass suffices and the
// proposal never starts before the requested start — the policy is push
// forward, never backward.
func (c *ConflictChecker) FindAlternative(ctx context.Context, resourceID string, requested domain.Window) (domain.Window, error) {
	existing, err := c.reservations.ListByResource(ctx, resourceID, domain.BlockingStatuses)
	if err != nil {
		return domain.Window{}, fmt.Errorf("service.ConflictChecker.FindAlternative: %w", err)
	}

	duration := requested.Duration()
	cursor := requested.Start

	for _, res := range existing {
		candidate := domain.Window{Start: cursor, End: cursor.Add(duration)}
		if res.Window.Overlaps(candidate) {
			cursor = res.Window.End.Add(c.buffer)
		}
	}

	return domain.Window{Start: cursor, End: cursor.Add(duration)}, nil
}
