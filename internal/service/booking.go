package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/openspot/parking/backend/internal/domain"
	"github.com/openspot/parking/backend/internal/repo"
)

// Notifier is the outbound notification sink. Implementations deliver
// best-effort and log their own failures; the interface deliberately returns
// nothing, so a state transition cannot be failed or rolled back by a
// delivery problem.
type Notifier interface {
	Notify(ctx context.Context, requesterID string, event domain.EventType, res domain.Reservation)
}

// Invalidator drops cached availability views for a resource after its time
// axis changes. Like Notifier it cannot fail the caller; implementations log.
type Invalidator interface {
	InvalidateResource(ctx context.Context, resourceID string)
}

// CreateResult is the outcome of a booking attempt. Exactly one of the two
// fields is set: Reservation on success, Alternative when the requested
// window was taken. A conflicted attempt is an expected outcome, not an
// error, and always carries an actionable proposal.
type CreateResult struct {
	Reservation *domain.Reservation
	Alternative *domain.Window
}

// Success reports whether the reservation was created.
func (r CreateResult) Success() bool {
	return r.Reservation != nil
}

// BookingService owns the reservation lifecycle: create, approve, reject,
// cancel. It is the only code that mutates reservations, and every transition
// goes through the domain transition table.
type BookingService struct {
	reservations repo.ReservationRepo
	checker      *ConflictChecker
	notifier     Notifier
	invalidator  Invalidator
	adminID      string
}

// NewBookingService constructs a BookingService.
// notifier and invalidator may be nil when those side effects are not wired
// (tests, or a deployment without push delivery / caching).
// adminID is the requester identity allowed to cancel anyone's reservation.
func NewBookingService(reservations repo.ReservationRepo, checker *ConflictChecker, notifier Notifier, invalidator Invalidator, adminID string) *BookingService {
	return &BookingService{
		reservations: reservations,
		checker:      checker,
		notifier:     notifier,
		invalidator:  invalidator,
		adminID:      adminID,
	}
}

// CreateReservation validates the window, checks the resource's time axis,
// and either persists a pending reservation or proposes an alternative.
//
// The check-then-write here is inherently racy against a concurrent create:
// two overlapping pending reservations can both be accepted. That is resolved
// at Approve time, where only one of the two can pass re-validation.
func (s *BookingService) CreateReservation(ctx context.Context, resourceID, requesterID string, window domain.Window) (CreateResult, error) {
	if !window.Valid() {
		return CreateResult{}, fmt.Errorf("%w: end must be after start", domain.ErrInvalidWindow)
	}

	conflicted, err := s.checker.HasConflict(ctx, resourceID, window)
	if err != nil {
		return CreateResult{}, fmt.Errorf("service.BookingService.CreateReservation: availability check: %w", err)
	}

	if conflicted {
		alt, err := s.checker.FindAlternative(ctx, resourceID, window)
		if err != nil {
			return CreateResult{}, fmt.Errorf("service.BookingService.CreateReservation: find alternative: %w", err)
		}
		return CreateResult{Alternative: &alt}, nil
	}

	created, err := s.reservations.Create(ctx, domain.Reservation{
		ResourceID:  resourceID,
		RequesterID: requesterID,
		Window:      window,
		Status:      domain.StatusPending,
	})
	if err != nil {
		return CreateResult{}, fmt.Errorf("service.BookingService.CreateReservation: %w", err)
	}

	s.invalidate(ctx, created.ResourceID)
	s.notify(ctx, domain.EventCreated, created)
	return CreateResult{Reservation: &created}, nil
}

// Approve flips a pending reservation to active.
//
// Active is the irrevocable state that blocks the resource, so conflicts are
// re-checked against the reservation's siblings immediately before the flip.
// This closes the race left open by CreateReservation: of two overlapping
// pending reservations, the second Approve fails with domain.ErrConflict and
// its caller retries via the alternative finder.
func (s *BookingService) Approve(ctx context.Context, id uuid.UUID) (domain.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("service.BookingService.Approve: %w", err)
	}

	if !domain.CanTransition(res.Status, domain.StatusActive) {
		return domain.Reservation{}, fmt.Errorf("%w: cannot approve a %s reservation", domain.ErrInvalidTransition, res.Status)
	}

	conflicted, err := s.checker.HasConflictExcluding(ctx, res)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("service.BookingService.Approve: availability check: %w", err)
	}
	if conflicted {
		return domain.Reservation{}, fmt.Errorf("%w: window overlaps an approved reservation", domain.ErrConflict)
	}

	active := domain.StatusActive
	updated, err := s.reservations.Update(ctx, id, domain.ReservationPatch{Status: &active})
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("service.BookingService.Approve: %w", err)
	}

	s.invalidate(ctx, updated.ResourceID)
	s.notify(ctx, domain.EventApproved, updated)
	return updated, nil
}

// Reject declines a pending reservation and records the reason.
func (s *BookingService) Reject(ctx context.Context, id uuid.UUID, reason string) (domain.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("service.BookingService.Reject: %w", err)
	}

	if !domain.CanTransition(res.Status, domain.StatusRejected) {
		return domain.Reservation{}, fmt.Errorf("%w: cannot reject a %s reservation", domain.ErrInvalidTransition, res.Status)
	}

	rejected := domain.StatusRejected
	updated, err := s.reservations.Update(ctx, id, domain.ReservationPatch{
		Status:          &rejected,
		RejectionReason: &reason,
	})
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("service.BookingService.Reject: %w", err)
	}

	// A pending reservation blocked the time axis; rejection frees it.
	s.invalidate(ctx, updated.ResourceID)
	s.notify(ctx, domain.EventRejected, updated)
	return updated, nil
}

// Cancel withdraws a reservation on behalf of callerID.
// Only the reservation's requester or the administrative identity may cancel.
// The transition check runs against the effective status, so an active
// reservation whose window has already elapsed reads as completed and cannot
// be cancelled.
func (s *BookingService) Cancel(ctx context.Context, id uuid.UUID, callerID string) (domain.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("service.BookingService.Cancel: %w", err)
	}

	if callerID != res.RequesterID && callerID != s.adminID {
		return domain.Reservation{}, fmt.Errorf("%w: only the requester or an admin may cancel", domain.ErrUnauthorized)
	}

	effective := res.EffectiveStatus(time.Now().UTC())
	if !domain.CanTransition(effective, domain.StatusCancelled) {
		return domain.Reservation{}, fmt.Errorf("%w: cannot cancel a %s reservation", domain.ErrInvalidTransition, effective)
	}

	cancelled := domain.StatusCancelled
	updated, err := s.reservations.Update(ctx, id, domain.ReservationPatch{Status: &cancelled})
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("service.BookingService.Cancel: %w", err)
	}

	s.invalidate(ctx, updated.ResourceID)
	s.notify(ctx, domain.EventCancelled, updated)
	return updated, nil
}

// Get returns a single reservation with its effective status applied.
func (s *BookingService) Get(ctx context.Context, id uuid.UUID) (domain.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("service.BookingService.Get: %w", err)
	}
	res.Status = res.EffectiveStatus(time.Now().UTC())
	return res, nil
}

// ListPending returns one page of the admin review queue, oldest first,
// together with the total count. Always returns a non-nil slice.
func (s *BookingService) ListPending(ctx context.Context, p domain.PaginationParams) ([]domain.Reservation, int, error) {
	all, err := s.reservations.ListByStatus(ctx, domain.StatusPending)
	if err != nil {
		return nil, 0, fmt.Errorf("service.BookingService.ListPending: %w", err)
	}
	return p.Slice(all), len(all), nil
}

// ListForRequester returns the requester's full reservation history, newest
// window first, with effective statuses applied. Always returns a non-nil
// slice so callers can safely range over it.
func (s *BookingService) ListForRequester(ctx context.Context, requesterID string) ([]domain.Reservation, error) {
	history, err := s.reservations.ListByRequester(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("service.BookingService.ListForRequester: %w", err)
	}
	now := time.Now().UTC()
	out := make([]domain.Reservation, len(history))
	for i, res := range history {
		res.Status = res.EffectiveStatus(now)
		out[i] = res
	}
	return out, nil
}

// notify emits a lifecycle event. Nil notifier means the sink is not wired.
func (s *BookingService) notify(ctx context.Context, event domain.EventType, res domain.Reservation) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, res.RequesterID, event, res)
}

// invalidate drops cached availability for the resource.
func (s *BookingService) invalidate(ctx context.Context, resourceID string) {
	if s.invalidator == nil {
		return
	}
	s.invalidator.InvalidateResource(ctx, resourceID)
}
