package throttle

import (
	"sync"
	"time"
)

// CaptureInterval is the minimum spacing between accepted captures.
const CaptureInterval = 3000 * time.Millisecond

// Debouncer accepts at most one event per interval. Rejected events do not
// move the window.
type Debouncer struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
	now      func() time.Time
}

// NewDebouncer returns a Debouncer using the wall clock.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{interval: interval, now: time.Now}
}

// WithClock replaces the time source. It is meant for tests.
func (d *Debouncer) WithClock(now func() time.Time) *Debouncer {
	d.mu.Lock()
	d.now = now
	d.mu.Unlock()
	return d
}

// Allow reports whether an event arriving now is accepted, and if so starts
// a new window.
func (d *Debouncer) Allow() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if !d.last.IsZero() && now.Sub(d.last) < d.interval {
		return false
	}
	d.last = now
	return true
}

// Remaining returns how long until the next event would be accepted.
func (d *Debouncer) Remaining() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.last.IsZero() {
		return 0
	}
	left := d.interval - d.now().Sub(d.last)
	if left < 0 {
		return 0
	}
	return left
}
