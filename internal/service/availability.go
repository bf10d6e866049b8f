package service

import (
	"context"
	"fmt"
	"time"

	"github.com/openspot/parking/backend/internal/domain"
	"github.com/openspot/parking/backend/internal/repo"
)

// CalendarConfig tunes the availability view.
// The zero value is normalized to hourly buckets over 08:00–20:00.
type CalendarConfig struct {
	// SlotWidth is the width of each bucket.
	SlotWidth time.Duration
	// OpenHour and CloseHour bound the operating window, in the day's local
	// hours. Buckets are generated from OpenHour up to (not including)
	// CloseHour.
	OpenHour  int
	CloseHour int
}

// DefaultOpenHour and DefaultCloseHour bound the operating window when the
// config leaves it unset. An explicit midnight open is still expressible as
// OpenHour 0 with a non-zero CloseHour.
const (
	DefaultOpenHour  = 8
	DefaultCloseHour = 20
)

// normalize fills in defaults and repairs nonsensical values.
func (c CalendarConfig) normalize() CalendarConfig {
	if c.SlotWidth <= 0 {
		c.SlotWidth = time.Hour
	}
	if c.OpenHour == 0 && c.CloseHour == 0 {
		c.OpenHour, c.CloseHour = DefaultOpenHour, DefaultCloseHour
	}
	if c.OpenHour < 0 || c.OpenHour > 23 {
		c.OpenHour = DefaultOpenHour
	}
	if c.CloseHour <= c.OpenHour || c.CloseHour > 24 {
		c.CloseHour = DefaultCloseHour
	}
	return c
}

// DayCache caches computed day views. Implementations are best-effort: a
// miss (or a broken cache) just means recomputation.
type DayCache interface {
	// GetDay returns the cached slots and true on a hit.
	GetDay(ctx context.Context, resourceID string, day time.Time) ([]domain.Slot, bool)
	// SetDay stores the slots for the day.
	SetDay(ctx context.Context, resourceID string, day time.Time, slots []domain.Slot)
}

// AvailabilityService derives a day's bucketed availability view from the
// reservation set. The view is computed on demand and optionally cached;
// it is never persisted.
type AvailabilityService struct {
	reservations repo.ReservationRepo
	cache        DayCache
	cfg          CalendarConfig
}

// NewAvailabilityService constructs an AvailabilityService.
// cache may be nil to disable caching.
func NewAvailabilityService(reservations repo.ReservationRepo, cache DayCache, cfg CalendarConfig) *AvailabilityService {
	return &AvailabilityService{
		reservations: reservations,
		cache:        cache,
		cfg:          cfg.normalize(),
	}
}

// AvailabilityForDay partitions the operating window of the given day into
// fixed-width buckets and marks each bucket unavailable when any pending or
// active reservation overlaps it. Overlap uses the same half-open semantics
// as the conflict detector, so a reservation ending exactly at a bucket's
// start does not block that bucket.
func (s *AvailabilityService) AvailabilityForDay(ctx context.Context, resourceID string, day time.Time) ([]domain.Slot, error) {
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())

	if s.cache != nil {
		if slots, ok := s.cache.GetDay(ctx, resourceID, day); ok {
			return slots, nil
		}
	}

	// One repo query for the whole day; the per-bucket checks run in memory.
	existing, err := s.reservations.ListByResource(ctx, resourceID, domain.BlockingStatuses)
	if err != nil {
		return nil, fmt.Errorf("service.AvailabilityService.AvailabilityForDay: %w", err)
	}

	open := day.Add(time.Duration(s.cfg.OpenHour) * time.Hour)
	close := day.Add(time.Duration(s.cfg.CloseHour) * time.Hour)

	var slots []domain.Slot
	for start := open; start.Before(close); start = start.Add(s.cfg.SlotWidth) {
		end := start.Add(s.cfg.SlotWidth)
		if end.After(close) {
			end = close
		}
		bucket := domain.Window{Start: start, End: end}

		available := true
		for _, res := range existing {
			if res.Window.Overlaps(bucket) {
				available = false
				break
			}
		}
		slots = append(slots, domain.Slot{Window: bucket, Available: available})
	}

	if s.cache != nil {
		s.cache.SetDay(ctx, resourceID, day, slots)
	}

	return slots, nil
}
