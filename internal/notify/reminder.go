package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	"github.com/openspot/parking/backend/internal/domain"
	"github.com/openspot/parking/backend/internal/service"
)

// DefaultReminderLead is how long before a reservation's window opens the
// reminder fires.
const DefaultReminderLead = 15 * time.Minute

// ReminderScheduler decorates a sink with reminder delivery. Approval
// schedules a one-time job that re-emits the reservation as a reminder event
// shortly before its window opens; cancellation tears the job down again.
// Every event, including the reminders it generates, flows to the wrapped
// sink unchanged.
type ReminderScheduler struct {
	inner service.Notifier
	sched gocron.Scheduler
	lead  time.Duration
	log   *slog.Logger

	mu   sync.Mutex
	jobs map[uuid.UUID]uuid.UUID // reservation id -> job id
}

// NewReminderScheduler wraps inner with reminder scheduling on sched.
// The scheduler must already be started by the caller. A non-positive lead
// falls back to DefaultReminderLead.
func NewReminderScheduler(inner service.Notifier, sched gocron.Scheduler, lead time.Duration, log *slog.Logger) *ReminderScheduler {
	if lead <= 0 {
		lead = DefaultReminderLead
	}
	return &ReminderScheduler{
		inner: inner,
		sched: sched,
		lead:  lead,
		log:   log,
		jobs:  make(map[uuid.UUID]uuid.UUID),
	}
}

// compile-time check: ReminderScheduler must satisfy service.Notifier.
var _ service.Notifier = (*ReminderScheduler)(nil)

func (s *ReminderScheduler) Notify(ctx context.Context, requesterID string, event domain.EventType, res domain.Reservation) {
	switch event {
	case domain.EventApproved:
		s.schedule(ctx, res)
	case domain.EventCancelled, domain.EventRejected:
		s.drop(ctx, res.ID)
	}
	if s.inner != nil {
		s.inner.Notify(ctx, requesterID, event, res)
	}
}

func (s *ReminderScheduler) schedule(ctx context.Context, res domain.Reservation) {
	runAt := res.Window.Start.Add(-s.lead)
	if !runAt.After(time.Now()) {
		// Window opens too soon; a reminder now would just be noise.
		return
	}

	job, err := s.sched.NewJob(
		gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(runAt)),
		gocron.NewTask(func() { s.fire(res) }),
	)
	if err != nil {
		s.log.WarnContext(ctx, "reminder scheduling failed",
			"reservation_id", res.ID, "error", err)
		return
	}

	s.mu.Lock()
	s.jobs[res.ID] = job.ID()
	s.mu.Unlock()

	s.log.DebugContext(ctx, "reminder scheduled",
		"reservation_id", res.ID, "run_at", runAt)
}

// fire runs inside the scheduler goroutine when the reminder comes due.
func (s *ReminderScheduler) fire(res domain.Reservation) {
	s.mu.Lock()
	delete(s.jobs, res.ID)
	s.mu.Unlock()

	if s.inner != nil {
		s.inner.Notify(context.Background(), res.RequesterID, domain.EventReminder, res)
	}
}

// drop removes a scheduled reminder, if any.
func (s *ReminderScheduler) drop(ctx context.Context, reservationID uuid.UUID) {
	s.mu.Lock()
	jobID, ok := s.jobs[reservationID]
	if ok {
		delete(s.jobs, reservationID)
	}
	s.mu.Unlock()
	if !ok {
		return
	}

	if err := s.sched.RemoveJob(jobID); err != nil {
		s.log.DebugContext(ctx, "reminder removal failed",
			"reservation_id", reservationID, "error", err)
	}
}
