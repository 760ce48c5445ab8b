package retry

import (
	"context"
	"sync"
	"time"

	"k8s.io/utils/clock"
)

// wait blocks for d or until ctx is done, whichever comes first.
// It returns false when the wait was cut short by ctx.
func wait(ctx context.Context, clk clock.Clock, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := clk.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C():
		return ctx.Err() == nil
	}
}

// dispatcher runs hook callbacks in order on its own goroutine.
// post never blocks: events are dropped when the buffer is full or after close.
// The final event handed to closeWith is never dropped; it runs after everything posted before it.
type dispatcher struct {
	mu     sync.Mutex
	closed bool
	final  func()
	events chan func()
}

func newDispatcher(size int) *dispatcher {
	d := &dispatcher{events: make(chan func(), size)}
	go func() {
		for fn := range d.events {
			fn()
		}

		d.mu.Lock()
		final := d.final
		d.mu.Unlock()
		if final != nil {
			final()
		}
	}()
	return d
}

func (d *dispatcher) post(fn func()) bool {
	if d == nil {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}
	select {
	case d.events <- fn:
		return true
	default:
		return false
	}
}

// close lets the goroutine drain pending events and exit.
func (d *dispatcher) close() {
	d.closeWith(nil)
}

// closeWith closes the dispatcher and schedules final to run once the pending events are drained.
// Only the first call has any effect.
func (d *dispatcher) closeWith(final func()) {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.closed {
		d.closed = true
		d.final = final
		close(d.events)
	}
}
