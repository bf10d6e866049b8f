package domain

// EventType identifies a lifecycle event emitted to the notification sink.
// Delivery is fire-and-forget; nothing in the engine depends on it succeeding.
type EventType string

const (
	// EventCreated is emitted after a reservation is persisted as pending.
	EventCreated EventType = "reservation.created"
	// EventApproved is emitted after a pending reservation becomes active.
	EventApproved EventType = "reservation.approved"
	// EventRejected is emitted after an admin rejects a pending reservation.
	EventRejected EventType = "reservation.rejected"
	// EventCancelled is emitted after a reservation is cancelled.
	EventCancelled EventType = "reservation.cancelled"
	// EventReminder is emitted by the scheduler shortly before the window starts.
	EventReminder EventType = "reservation.reminder"
)
