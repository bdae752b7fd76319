package notify

import (
	"context"
	"time"

	"application-tracker/internal/queue"
)

// Queue hands events to a queue for the worker to deliver.
type Queue struct {
	client queue.Client
	now    func() time.Time
}

func NewQueue(client queue.Client) *Queue {
	return &Queue{client: client, now: time.Now}
}

func (q *Queue) Notify(ctx context.Context, ev Event) error {
	return q.client.Send(ctx, ToMessage(ev, q.now()))
}

// ToMessage converts an event to its queue form.
func ToMessage(ev Event, enqueuedAt time.Time) queue.Message {
	return queue.Message{
		Kind:        ev.Kind,
		Token:       ev.Token,
		Name:        ev.Name,
		Email:       ev.Email,
		Role:        ev.Role,
		TrackingURL: ev.TrackingURL,
		SubmittedAt: ev.SubmittedAt,
		RequestID:   ev.RequestID,
		EnqueuedAt:  enqueuedAt.UTC().Format(time.RFC3339),
		Version:     queue.MessageVersion,
	}
}

// FromMessage rebuilds the event carried by a queue message.
func FromMessage(msg queue.Message) Event {
	return Event{
		Kind:        msg.Kind,
		Token:       msg.Token,
		Name:        msg.Name,
		Email:       msg.Email,
		Role:        msg.Role,
		TrackingURL: msg.TrackingURL,
		SubmittedAt: msg.SubmittedAt,
		RequestID:   msg.RequestID,
	}
}

var _ Notifier = (*Queue)(nil)
