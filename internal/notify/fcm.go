package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/openspot/parking/backend/internal/domain"
	"github.com/openspot/parking/backend/internal/service"
)

// NewMessagingClient initializes the Firebase app from a service account
// credentials file and returns its FCM client.
func NewMessagingClient(ctx context.Context, credentialsFile string) (*messaging.Client, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("notify.NewMessagingClient: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("notify.NewMessagingClient: %w", err)
	}
	return client, nil
}

// FCMNotifier delivers lifecycle events as FCM data messages. Each requester
// has their own topic, so devices subscribe once at login and receive every
// event about their reservations without per-device token bookkeeping here.
type FCMNotifier struct {
	client *messaging.Client
	log    *slog.Logger
}

// NewFCMNotifier constructs an FCMNotifier around an initialized client.
func NewFCMNotifier(client *messaging.Client, log *slog.Logger) *FCMNotifier {
	return &FCMNotifier{client: client, log: log}
}

// compile-time check: FCMNotifier must satisfy service.Notifier.
var _ service.Notifier = (*FCMNotifier)(nil)

func (n *FCMNotifier) Notify(ctx context.Context, requesterID string, event domain.EventType, res domain.Reservation) {
	_, err := n.client.Send(ctx, &messaging.Message{
		Topic: UserTopic(requesterID),
		Data:  eventPayload(event, res),
	})
	if err != nil {
		n.log.WarnContext(ctx, "push delivery failed",
			"event", string(event),
			"reservation_id", res.ID,
			"requester_id", requesterID,
			"error", err,
		)
		return
	}
	n.log.DebugContext(ctx, "push delivered",
		"event", string(event),
		"reservation_id", res.ID,
	)
}

// UserTopic maps a requester id onto its FCM topic. Topic names only allow
// [a-zA-Z0-9-_.~%]; anything else is replaced so an odd id cannot make the
// send fail outright.
func UserTopic(requesterID string) string {
	safe := []byte("user_")
	for i := 0; i < len(requesterID); i++ {
		c := requesterID[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9',
			c == '-', c == '_', c == '.', c == '~', c == '%':
			safe = append(safe, c)
		default:
			safe = append(safe, '_')
		}
	}
	return string(safe)
}

// eventPayload flattens a reservation into the string map FCM data messages
// require. Clients render their own notification text from it.
func eventPayload(event domain.EventType, res domain.Reservation) map[string]string {
	data := map[string]string{
		"event":          string(event),
		"reservation_id": res.ID.String(),
		"resource_id":    res.ResourceID,
		"status":         string(res.Status),
		"start_time":     res.Window.Start.Format(time.RFC3339),
		"end_time":       res.Window.End.Format(time.RFC3339),
	}
	if res.RejectionReason != "" {
		data["rejection_reason"] = res.RejectionReason
	}
	return data
}
