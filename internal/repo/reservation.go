// Package repo contains all persistence logic for the parking reservation
// engine. The ReservationRepo interface is the storage boundary; this file
// holds the Postgres implementation, memory.go the in-memory one, and
// fallback.go a decorator that fails over between the two.
// No business logic lives here — only storage access and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/openspot/parking/backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ReservationRepo defines the persistence operations for reservations.
// The service layer depends on this interface, not a concrete implementation,
// which allows it to be unit-tested with a mock and lets the fallback
// decorator compose two stores behind the same contract.
//
// Reservations are never deleted; terminal rows remain for history queries.
type ReservationRepo interface {
	// Create inserts a new reservation and returns the persisted record
	// (with store-assigned id, created_at, and updated_at populated).
	Create(ctx context.Context, res domain.Reservation) (domain.Reservation, error)

	// GetByID retrieves a single reservation by its UUID primary key.
	// Returns domain.ErrNotFound if no reservation with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Reservation, error)

	// ListByResource returns all reservations for a resource whose status is
	// in statuses, ordered by window start ascending. An empty statuses slice
	// matches nothing.
	ListByResource(ctx context.Context, resourceID string, statuses []domain.Status) ([]domain.Reservation, error)

	// ListByRequester returns all reservations ever made by a requester,
	// regardless of status, ordered by window start descending.
	ListByRequester(ctx context.Context, requesterID string) ([]domain.Reservation, error)

	// ListByStatus returns all reservations in the given status, ordered by
	// created_at ascending (oldest first — the admin review queue order).
	ListByStatus(ctx context.Context, status domain.Status) ([]domain.Reservation, error)

	// Update applies the non-nil fields of patch to an existing reservation
	// and returns the updated record. Returns domain.ErrNotFound if absent.
	Update(ctx context.Context, id uuid.UUID, patch domain.ReservationPatch) (domain.Reservation, error)
}

// pgReservationRepo is the Postgres implementation of ReservationRepo.
type pgReservationRepo struct {
	db db
}

// NewReservationRepo constructs a ReservationRepo backed by the provided db.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewReservationRepo(db db) ReservationRepo {
	return &pgReservationRepo{db: db}
}

const reservationColumns = `id, resource_id, requester_id, start_time, end_time, status, rejection_reason, created_at, updated_at`

// Create inserts a new reservation row and returns the full persisted record.
func (r *pgReservationRepo) Create(ctx context.Context, res domain.Reservation) (domain.Reservation, error) {
	const q = `
		INSERT INTO reservations (resource_id, requester_id, start_time, end_time, status)
		VALUES (@resource_id, @requester_id, @start_time, @end_time, @status)
		RETURNING ` + reservationColumns

	args := pgx.NamedArgs{
		"resource_id":  res.ResourceID,
		"requester_id": res.RequesterID,
		"start_time":   res.Window.Start,
		"end_time":     res.Window.End,
		"status":       string(res.Status),
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanReservation(row)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a reservation by primary key.
func (r *pgReservationRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Reservation, error) {
	const q = `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanReservation(row)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.GetByID: %w", err)
	}
	return result, nil
}

// ListByResource returns the resource's reservations in the given statuses,
// ordered by start_time ascending. The alternative-slot sweep depends on
// this ordering.
func (r *pgReservationRepo) ListByResource(ctx context.Context, resourceID string, statuses []domain.Status) ([]domain.Reservation, error) {
	const q = `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE resource_id = @resource_id AND status = ANY(@statuses)
		ORDER BY start_time ASC`

	args := pgx.NamedArgs{
		"resource_id": resourceID,
		"statuses":    statusStrings(statuses),
	}

	return r.list(ctx, "ListByResource", q, args)
}

// ListByRequester returns the requester's full history, newest window first.
func (r *pgReservationRepo) ListByRequester(ctx context.Context, requesterID string) ([]domain.Reservation, error) {
	const q = `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE requester_id = @requester_id
		ORDER BY start_time DESC`

	return r.list(ctx, "ListByRequester", q, pgx.NamedArgs{"requester_id": requesterID})
}

// ListByStatus returns all reservations in status, oldest created first.
func (r *pgReservationRepo) ListByStatus(ctx context.Context, status domain.Status) ([]domain.Reservation, error) {
	const q = `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE status = @status
		ORDER BY created_at ASC`

	return r.list(ctx, "ListByStatus", q, pgx.NamedArgs{"status": string(status)})
}

// Update applies the patch via COALESCE so nil fields leave columns untouched.
func (r *pgReservationRepo) Update(ctx context.Context, id uuid.UUID, patch domain.ReservationPatch) (domain.Reservation, error) {
	const q = `
		UPDATE reservations
		SET status           = COALESCE(@status, status),
		    rejection_reason = COALESCE(@rejection_reason, rejection_reason),
		    updated_at       = now()
		WHERE id = @id
		RETURNING ` + reservationColumns

	var status *string
	if patch.Status != nil {
		s := string(*patch.Status)
		status = &s
	}

	args := pgx.NamedArgs{
		"id":               id,
		"status":           status,
		"rejection_reason": patch.RejectionReason,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanReservation(row)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.Update: %w", err)
	}
	return result, nil
}

// list runs a multi-row query and scans the results.
func (r *pgReservationRepo) list(ctx context.Context, op, q string, args pgx.NamedArgs) ([]domain.Reservation, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.ReservationRepo.%s: %w", op, err)
	}
	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.ReservationRepo.%s: scan: %w", op, err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ReservationRepo.%s: rows: %w", op, err)
	}

	return out, nil
}

// statusStrings converts the status filter to the []string pgx encodes as text[].
func statusStrings(statuses []domain.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scanReservation
// to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanReservation maps a single database row into a domain.Reservation.
// It handles the UUID conversion and the nullable rejection_reason column.
func scanReservation(s scanner) (domain.Reservation, error) {
	var (
		res    domain.Reservation
		id     pgtype.UUID
		status string
		reason pgtype.Text
	)

	err := s.Scan(&id, &res.ResourceID, &res.RequesterID,
		&res.Window.Start, &res.Window.End, &status, &reason,
		&res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Reservation{}, domain.ErrNotFound
		}
		return domain.Reservation{}, err
	}

	res.ID = uuid.UUID(id.Bytes)
	res.Status = domain.Status(status)
	if reason.Valid {
		res.RejectionReason = reason.String
	}

	return res, nil
}
