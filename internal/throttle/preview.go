package throttle

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ironsheep/docscan-mcp/internal/geometry"
	"github.com/sirupsen/logrus"
)

// DetectFunc finds a boundary in a frame. It must not retain the frame.
type DetectFunc[T any] func(frame T) (geometry.Quad, bool)

// Outcome is one completed detection.
type Outcome struct {
	Seq      uint64        `json:"seq"`
	Found    bool          `json:"found"`
	Quad     geometry.Quad `json:"quad"`
	Duration time.Duration `json:"duration"`
}

// Stats counts frames offered to a Preview.
type Stats struct {
	Accepted  uint64 `json:"accepted"`
	Dropped   uint64 `json:"dropped"`
	Completed uint64 `json:"completed"`
}

// Preview runs detection on a live frame stream with a single worker.
//
// A frame offered while the worker is busy is dropped, not queued. Frames
// handed to Submit belong to the Preview from then on: accepted frames are
// released by the worker once detection finishes, dropped frames are
// released before Submit returns.
type Preview[T any] struct {
	gate    Gate
	detect  DetectFunc[T]
	release func(T)
	log     logrus.FieldLogger

	work    chan T
	results chan Outcome

	mu      sync.Mutex
	stopped bool
	started bool
	latest  Outcome
	haveAny bool
	done    chan struct{}

	seq       atomic.Uint64
	accepted  atomic.Uint64
	dropped   atomic.Uint64
	completed atomic.Uint64
}

// NewPreview creates a Preview. release may be nil when frames need no
// cleanup.
func NewPreview[T any](detect DetectFunc[T], release func(T), log logrus.FieldLogger) *Preview[T] {
	if release == nil {
		release = func(T) {}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Preview[T]{
		detect:  detect,
		release: release,
		log:     log,
		work:    make(chan T, 1),
		results: make(chan Outcome, 1),
		done:    make(chan struct{}),
	}
}

// Start launches the worker. When ctx is cancelled the Preview stops
// accepting frames; a detection already running completes and its result
// is discarded. Start may be called once.
func (p *Preview[T]) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go p.run(ctx)
}

// Done is closed when the worker has exited.
func (p *Preview[T]) Done() <-chan struct{} {
	return p.done
}

// Submit offers a frame for detection and reports whether it was accepted.
func (p *Preview[T]) Submit(frame T) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped || !p.gate.TryAcquire() {
		p.drop(frame)
		return false
	}

	select {
	case p.work <- frame:
		p.accepted.Add(1)
		return true
	default:
		// The gate guarantees an empty slot; reaching here is a bug.
		p.gate.Release()
		p.drop(frame)
		return false
	}
}

// Results delivers completed detections. The channel holds only the most
// recent outcome; older unread outcomes are replaced.
func (p *Preview[T]) Results() <-chan Outcome {
	return p.results
}

// Latest returns the most recent completed detection. ok is false until the
// first detection completes, which is distinct from a completed detection
// that found nothing.
func (p *Preview[T]) Latest() (Outcome, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.latest, p.haveAny
}

// Stats returns the frame counters.
func (p *Preview[T]) Stats() Stats {
	return Stats{
		Accepted:  p.accepted.Load(),
		Dropped:   p.dropped.Load(),
		Completed: p.completed.Load(),
	}
}

// Busy reports whether a detection is in flight.
func (p *Preview[T]) Busy() bool {
	return p.gate.Busy()
}

func (p *Preview[T]) drop(frame T) {
	p.dropped.Add(1)
	p.release(frame)
}

func (p *Preview[T]) run(ctx context.Context) {
	defer close(p.done)

	for {
		select {
		case <-ctx.Done():
			p.stop()
			return
		case frame := <-p.work:
			p.process(ctx, frame)
		}
	}
}

func (p *Preview[T]) process(ctx context.Context, frame T) {
	start := time.Now()
	q, found := p.detect(frame)
	p.release(frame)

	if ctx.Err() != nil {
		p.gate.Release()
		p.log.Debug("Discarding detection finished after shutdown")
		return
	}

	out := Outcome{
		Seq:      p.seq.Add(1),
		Found:    found,
		Quad:     q,
		Duration: time.Since(start),
	}
	p.completed.Add(1)

	p.mu.Lock()
	p.latest = out
	p.haveAny = true
	p.mu.Unlock()

	// Reopen before publishing so a reader woken by the result can submit.
	p.gate.Release()
	p.publish(out)

	if !found {
		p.log.WithField("seq", out.Seq).Debug("No boundary found")
	}
}

// publish replaces any unread outcome with out.
func (p *Preview[T]) publish(out Outcome) {
	for {
		select {
		case p.results <- out:
			return
		default:
		}
		select {
		case <-p.results:
		default:
		}
	}
}

// stop refuses new frames and releases one that was accepted but not
// picked up.
func (p *Preview[T]) stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopped = true
	select {
	case frame := <-p.work:
		p.release(frame)
		p.gate.Release()
	default:
	}
}
