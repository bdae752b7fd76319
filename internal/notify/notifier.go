package notify

import (
	"context"
	"fmt"
	"time"
)

// Event kinds.
const (
	KindApplicantReceipt = "applicant_receipt"
	KindAdminAlert       = "admin_alert"
)

// Event describes a notification about one application.
type Event struct {
	Kind        string
	Token       string
	Name        string
	Email       string
	Role        string
	TrackingURL string
	SubmittedAt time.Time
	RequestID   string
}

// Notifier delivers an event. Delivery is at most once.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// Error wraps a failed delivery with the event kind.
type Error struct {
	Kind string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("notify %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Noop discards every event.
type Noop struct{}

func (Noop) Notify(ctx context.Context, ev Event) error {
	return nil
}

var _ Notifier = Noop{}
