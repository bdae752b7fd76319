package notify

import (
	"context"
	"sync"
	"time"

	"application-tracker/internal/shared/metrics"
	"application-tracker/internal/shared/telemetry"
)

const defaultTimeout = 10 * time.Second

// Dispatcher fires notifications in the background. Failures are logged and
// never reach the caller.
type Dispatcher struct {
	notifier Notifier
	timeout  time.Duration
	// success labels a successful hand-off; the worker counts "sent" for queued events.
	success string
	wg      sync.WaitGroup
}

func NewDispatcher(n Notifier, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	success := "sent"
	if _, ok := n.(*Queue); ok {
		success = "queued"
	}
	return &Dispatcher{notifier: n, timeout: timeout, success: success}
}

// Fire delivers ev asynchronously with its own timeout, detached from any request context.
func (d *Dispatcher) Fire(ev Event) {
	if d == nil || d.notifier == nil {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.deliver(ev)
	}()
}

func (d *Dispatcher) deliver(ev Event) {
	defer func() {
		if rec := recover(); rec != nil {
			metrics.IncNotification(ev.Kind, "failed")
			telemetry.Error("notify.panic", map[string]any{"kind": ev.Kind, "token": ev.Token, "error": rec})
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.notifier.Notify(ctx, ev); err != nil {
		nerr := &Error{Kind: ev.Kind, Err: err}
		metrics.IncNotification(ev.Kind, "failed")
		telemetry.Warn("notify.failed", map[string]any{
			"kind":       ev.Kind,
			"token":      ev.Token,
			"request_id": ev.RequestID,
			"error":      nerr.Error(),
		})
		return
	}
	metrics.IncNotification(ev.Kind, d.success)
}

// Wait blocks until in-flight notifications finish or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	if d == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
