// Package throttle limits how often expensive work runs on a stream of
// camera frames.
//
// Preview admits at most one frame to detection at a time and drops the
// rest, so a slow detector never builds a backlog. Debouncer rejects capture
// requests that arrive too soon after the last accepted one.
package throttle

import "sync/atomic"

// Gate is a non-blocking busy flag. The zero value is open.
type Gate struct {
	busy atomic.Bool
}

// TryAcquire closes the gate and reports true if it was open.
func (g *Gate) TryAcquire() bool {
	return g.busy.CompareAndSwap(false, true)
}

// Release opens the gate.
func (g *Gate) Release() {
	g.busy.Store(false)
}

// Busy reports whether the gate is closed.
func (g *Gate) Busy() bool {
	return g.busy.Load()
}
