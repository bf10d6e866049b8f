package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/openspot/parking/backend/internal/domain"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to domain.Status }{
		{domain.StatusPending, domain.StatusActive},
		{domain.StatusPending, domain.StatusRejected},
		{domain.StatusPending, domain.StatusCancelled},
		{domain.StatusActive, domain.StatusCancelled},
	}
	for _, tr := range allowed {
		assert.True(t, domain.CanTransition(tr.from, tr.to), "%s -> %s should be allowed", tr.from, tr.to)
	}

	// Everything not in the table is rejected, including self-transitions
	// and anything out of a terminal state.
	denied := []struct{ from, to domain.Status }{
		{domain.StatusActive, domain.StatusPending},
		{domain.StatusActive, domain.StatusRejected},
		{domain.StatusRejected, domain.StatusActive},
		{domain.StatusRejected, domain.StatusCancelled},
		{domain.StatusCancelled, domain.StatusCancelled},
		{domain.StatusCancelled, domain.StatusActive},
		{domain.StatusCompleted, domain.StatusCancelled},
		{domain.StatusPending, domain.StatusPending},
		{domain.StatusPending, domain.StatusCompleted},
	}
	for _, tr := range denied {
		assert.False(t, domain.CanTransition(tr.from, tr.to), "%s -> %s should be denied", tr.from, tr.to)
	}
}

func TestStatus_Blocking(t *testing.T) {
	assert.True(t, domain.StatusPending.Blocking())
	assert.True(t, domain.StatusActive.Blocking())
	assert.False(t, domain.StatusRejected.Blocking())
	assert.False(t, domain.StatusCancelled.Blocking())
	assert.False(t, domain.StatusCompleted.Blocking())
}

func TestReservation_EffectiveStatus(t *testing.T) {
	w := win(10, 11)
	res := domain.Reservation{Window: w, Status: domain.StatusActive}

	before := w.End.Add(-time.Minute)
	after := w.End.Add(time.Minute)

	assert.Equal(t, domain.StatusActive, res.EffectiveStatus(before))
	assert.Equal(t, domain.StatusCompleted, res.EffectiveStatus(w.End), "end instant counts as elapsed")
	assert.Equal(t, domain.StatusCompleted, res.EffectiveStatus(after))

	// Only active reservations complete; a pending one past its end stays pending.
	res.Status = domain.StatusPending
	assert.Equal(t, domain.StatusPending, res.EffectiveStatus(after))
}

func TestPaginationParams_Slice(t *testing.T) {
	items := make([]domain.Reservation, 5)

	p := domain.PaginationParams{Page: 1, Limit: 2}
	assert.Len(t, p.Slice(items), 2)

	p = domain.PaginationParams{Page: 3, Limit: 2}
	assert.Len(t, p.Slice(items), 1)

	p = domain.PaginationParams{Page: 4, Limit: 2}
	got := p.Slice(items)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
