package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"application-tracker/internal/queue"
)

type fakeQueue struct {
	sent []queue.Message
}

func (f *fakeQueue) Send(ctx context.Context, msg queue.Message) error {
	f.sent = append(f.sent, msg)
	return nil
}

func TestQueueNotifierEnqueuesEvent(t *testing.T) {
	fq := &fakeQueue{}
	q := NewQueue(fq)
	q.now = func() time.Time { return time.Date(2026, 1, 30, 22, 0, 0, 0, time.UTC) }

	ev := ashaEvent
	ev.Kind = KindAdminAlert
	require.NoError(t, q.Notify(context.Background(), ev))
	require.Len(t, fq.sent, 1)

	msg := fq.sent[0]
	require.Equal(t, queue.MessageVersion, msg.Version)
	require.Equal(t, "2026-01-30T22:00:00Z", msg.EnqueuedAt)
	require.Equal(t, ev, FromMessage(msg))
}
