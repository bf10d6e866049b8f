package repo

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/openspot/parking/backend/internal/domain"
)

// FallbackReservationRepo tries a primary store and fails over to a secondary
// on infrastructure errors. Both sides satisfy the same ReservationRepo
// contract, so callers never learn which store served them; activation is an
// observability event only.
//
// domain.ErrNotFound from the primary is a definitive answer, not an outage,
// and is returned as-is — otherwise a row created before an outage would be
// reported missing instead of falling through to the secondary.
//
// Data written during a failover lives only in the secondary. That divergence
// is accepted: the secondary exists to keep the demo serving requests while
// the durable backend is down, not to replicate it.
type FallbackReservationRepo struct {
	primary   ReservationRepo
	secondary ReservationRepo
	log       *slog.Logger
}

// NewFallbackReservationRepo composes primary and secondary stores.
// Fallback activations are logged at Warn on the provided logger.
func NewFallbackReservationRepo(primary, secondary ReservationRepo, log *slog.Logger) *FallbackReservationRepo {
	return &FallbackReservationRepo{primary: primary, secondary: secondary, log: log}
}

// compile-time check: FallbackReservationRepo must satisfy ReservationRepo.
var _ ReservationRepo = (*FallbackReservationRepo)(nil)

// failover reports whether err warrants trying the secondary, logging when it does.
func (r *FallbackReservationRepo) failover(ctx context.Context, op string, err error) bool {
	if err == nil || errors.Is(err, domain.ErrNotFound) {
		return false
	}
	r.log.WarnContext(ctx, "primary repository unavailable, using fallback",
		"op", op,
		"error", err,
	)
	return true
}

func (r *FallbackReservationRepo) Create(ctx context.Context, res domain.Reservation) (domain.Reservation, error) {
	created, err := r.primary.Create(ctx, res)
	if r.failover(ctx, "Create", err) {
		return r.secondary.Create(ctx, res)
	}
	return created, err
}

func (r *FallbackReservationRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Reservation, error) {
	res, err := r.primary.GetByID(ctx, id)
	if r.failover(ctx, "GetByID", err) {
		return r.secondary.GetByID(ctx, id)
	}
	return res, err
}

func (r *FallbackReservationRepo) ListByResource(ctx context.Context, resourceID string, statuses []domain.Status) ([]domain.Reservation, error) {
	out, err := r.primary.ListByResource(ctx, resourceID, statuses)
	if r.failover(ctx, "ListByResource", err) {
		return r.secondary.ListByResource(ctx, resourceID, statuses)
	}
	return out, err
}

func (r *FallbackReservationRepo) ListByRequester(ctx context.Context, requesterID string) ([]domain.Reservation, error) {
	out, err := r.primary.ListByRequester(ctx, requesterID)
	if r.failover(ctx, "ListByRequester", err) {
		return r.secondary.ListByRequester(ctx, requesterID)
	}
	return out, err
}

func (r *FallbackReservationRepo) ListByStatus(ctx context.Context, status domain.Status) ([]domain.Reservation, error) {
	out, err := r.primary.ListByStatus(ctx, status)
	if r.failover(ctx, "ListByStatus", err) {
		return r.secondary.ListByStatus(ctx, status)
	}
	return out, err
}

func (r *FallbackReservationRepo) Update(ctx context.Context, id uuid.UUID, patch domain.ReservationPatch) (domain.Reservation, error) {
	res, err := r.primary.Update(ctx, id, patch)
	if r.failover(ctx, "Update", err) {
		return r.secondary.Update(ctx, id, patch)
	}
	return res, err
}
