package notify

import (
	"context"
	"log/slog"

	"github.com/openspot/parking/backend/internal/domain"
	"github.com/openspot/parking/backend/internal/service"
)

// LogNotifier writes lifecycle events to the structured log. It is the
// always-on sink: deployments without a push channel still get an audit
// trail of every transition.
type LogNotifier struct {
	log *slog.Logger
}

// NewLogNotifier constructs a LogNotifier writing to log.
func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// compile-time check: LogNotifier must satisfy service.Notifier.
var _ service.Notifier = (*LogNotifier)(nil)

func (n *LogNotifier) Notify(ctx context.Context, requesterID string, event domain.EventType, res domain.Reservation) {
	n.log.InfoContext(ctx, "reservation event",
		"event", string(event),
		"reservation_id", res.ID,
		"resource_id", res.ResourceID,
		"requester_id", requesterID,
		"status", string(res.Status),
		"start_time", res.Window.Start,
		"end_time", res.Window.End,
	)
}
