package repo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openspot/parking/backend/internal/domain"
)

// MemoryReservationRepo is a map-backed ReservationRepo guarded by a RWMutex.
// It implements the full repository contract — same ordering, same patch
// semantics, same ErrNotFound behavior — so it can stand in for Postgres
// when no durable backend is configured or reachable.
type MemoryReservationRepo struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]domain.Reservation
}

// NewMemoryReservationRepo constructs an empty in-memory repository.
func NewMemoryReservationRepo() *MemoryReservationRepo {
	return &MemoryReservationRepo{byID: make(map[uuid.UUID]domain.Reservation)}
}

// compile-time check: MemoryReservationRepo must satisfy ReservationRepo.
var _ ReservationRepo = (*MemoryReservationRepo)(nil)

// Create assigns an id and timestamps, mirroring what Postgres defaults do.
func (r *MemoryReservationRepo) Create(ctx context.Context, res domain.Reservation) (domain.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return domain.Reservation{}, fmt.Errorf("repo.MemoryReservationRepo.Create: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	res.ID = uuid.New()
	res.CreatedAt = now
	res.UpdatedAt = now

	r.byID[res.ID] = res
	return res, nil
}

// GetByID returns the reservation or domain.ErrNotFound.
func (r *MemoryReservationRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return domain.Reservation{}, fmt.Errorf("repo.MemoryReservationRepo.GetByID: %w", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	res, ok := r.byID[id]
	if !ok {
		return domain.Reservation{}, fmt.Errorf("repo.MemoryReservationRepo.GetByID: %w", domain.ErrNotFound)
	}
	return res, nil
}

// ListByResource filters by resource and status set, ordered by start ascending.
func (r *MemoryReservationRepo) ListByResource(ctx context.Context, resourceID string, statuses []domain.Status) ([]domain.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("repo.MemoryReservationRepo.ListByResource: %w", err)
	}

	wanted := make(map[domain.Status]bool, len(statuses))
	for _, s := range statuses {
		wanted[s] = true
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Reservation
	for _, res := range r.byID {
		if res.ResourceID == resourceID && wanted[res.Status] {
			out = append(out, res)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Window.Start.Before(out[j].Window.Start)
	})
	return out, nil
}

// ListByRequester returns the requester's history, newest window first.
func (r *MemoryReservationRepo) ListByRequester(ctx context.Context, requesterID string) ([]domain.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("repo.MemoryReservationRepo.ListByRequester: %w", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Reservation
	for _, res := range r.byID {
		if res.RequesterID == requesterID {
			out = append(out, res)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Window.Start.After(out[j].Window.Start)
	})
	return out, nil
}

// ListByStatus returns reservations in status, oldest created first.
func (r *MemoryReservationRepo) ListByStatus(ctx context.Context, status domain.Status) ([]domain.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("repo.MemoryReservationRepo.ListByStatus: %w", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Reservation
	for _, res := range r.byID {
		if res.Status == status {
			out = append(out, res)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Update applies the non-nil patch fields and bumps UpdatedAt.
func (r *MemoryReservationRepo) Update(ctx context.Context, id uuid.UUID, patch domain.ReservationPatch) (domain.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return domain.Reservation{}, fmt.Errorf("repo.MemoryReservationRepo.Update: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	res, ok := r.byID[id]
	if !ok {
		return domain.Reservation{}, fmt.Errorf("repo.MemoryReservationRepo.Update: %w", domain.ErrNotFound)
	}

	if patch.Status != nil {
		res.Status = *patch.Status
	}
	if patch.RejectionReason != nil {
		res.RejectionReason = *patch.RejectionReason
	}
	res.UpdatedAt = time.Now().UTC()

	r.byID[id] = res
	return res, nil
}
