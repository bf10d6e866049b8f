// Package notify implements the outbound notification sinks for reservation
// lifecycle events. All sinks are best-effort: delivery failures are logged
// and never propagated, so a broken push channel cannot fail a booking.
package notify

import (
	"context"

	"github.com/openspot/parking/backend/internal/domain"
	"github.com/openspot/parking/backend/internal/service"
)

// Multi fans a lifecycle event out to every sink in order.
type Multi []service.Notifier

// NewMulti bundles sinks into a single Notifier. Nil entries are dropped.
func NewMulti(sinks ...service.Notifier) Multi {
	out := make(Multi, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (m Multi) Notify(ctx context.Context, requesterID string, event domain.EventType, res domain.Reservation) {
	for _, sink := range m {
		sink.Notify(ctx, requesterID, event, res)
	}
}

// compile-time check: Multi must satisfy service.Notifier.
var _ service.Notifier = (Multi)(nil)
