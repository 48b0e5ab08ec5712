package throttle

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ironsheep/docscan-mcp/internal/geometry"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// blockingDetector reports when a frame arrives and waits for permission to
// finish it.
type blockingDetector struct {
	started chan int
	proceed chan struct{}
	found   bool
}

func newBlockingDetector() *blockingDetector {
	return &blockingDetector{
		started: make(chan int, 16),
		proceed: make(chan struct{}),
		found:   true,
	}
}

func (d *blockingDetector) detect(frame int) (geometry.Quad, bool) {
	d.started <- frame
	<-d.proceed
	if !d.found {
		return geometry.Quad{}, false
	}
	return geometry.FullFrame(geometry.Sz(frame, frame)), true
}

func waitOutcome(t *testing.T, results <-chan Outcome) Outcome {
	t.Helper()
	select {
	case out := <-results:
		return out
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a detection result")
		return Outcome{}
	}
}

func TestGate(t *testing.T) {
	var g Gate

	if !g.TryAcquire() {
		t.Fatal("first TryAcquire on an open gate failed")
	}
	if g.TryAcquire() {
		t.Fatal("second TryAcquire succeeded while busy")
	}
	if !g.Busy() {
		t.Error("Busy() = false after acquire")
	}

	g.Release()
	if g.Busy() {
		t.Error("Busy() = true after release")
	}
	if !g.TryAcquire() {
		t.Error("TryAcquire failed after release")
	}
}

func TestGate_Concurrent(t *testing.T) {
	var g Gate
	var wins atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.TryAcquire() {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	if wins.Load() != 1 {
		t.Errorf("%d goroutines acquired the gate, want 1", wins.Load())
	}
}

func TestPreview_DropsWhileBusy(t *testing.T) {
	det := newBlockingDetector()

	var mu sync.Mutex
	var released []int
	release := func(f int) {
		mu.Lock()
		released = append(released, f)
		mu.Unlock()
	}

	p := NewPreview[int](det.detect, release, quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)

	if !p.Submit(100) {
		t.Fatal("first frame was not accepted")
	}
	<-det.started

	for f := 1; f <= 10; f++ {
		if p.Submit(f) {
			t.Fatalf("frame %d accepted while a detection was in flight", f)
		}
	}

	mu.Lock()
	if len(released) != 10 {
		t.Errorf("released %d dropped frames, want 10", len(released))
	}
	mu.Unlock()

	close(det.proceed)
	out := waitOutcome(t, p.Results())
	if !out.Found || out.Quad[geometry.BottomRight] != geometry.Pt(100, 100) {
		t.Errorf("outcome %+v does not belong to the in-flight frame", out)
	}

	// The gate is open again once the result is visible.
	if !p.Submit(200) {
		t.Error("frame after completion was not accepted")
	}
	waitOutcome(t, p.Results())

	stats := p.Stats()
	if stats.Accepted != 2 || stats.Dropped != 10 || stats.Completed != 2 {
		t.Errorf("Stats() = %+v, want 2 accepted, 10 dropped, 2 completed", stats)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(released) != 12 {
		t.Errorf("released %d frames in total, want 12", len(released))
	}
}

func TestPreview_LatestBeforeFirstResult(t *testing.T) {
	det := newBlockingDetector()
	det.found = false

	p := NewPreview[int](det.detect, nil, quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)

	if _, ok := p.Latest(); ok {
		t.Fatal("Latest() reported a result before any detection")
	}

	p.Submit(1)
	close(det.proceed)
	waitOutcome(t, p.Results())

	out, ok := p.Latest()
	if !ok {
		t.Fatal("Latest() has no result after a completed detection")
	}
	if out.Found {
		t.Error("Latest() reports a boundary for a detection that found none")
	}
}

func TestPreview_LatestWins(t *testing.T) {
	det := newBlockingDetector()
	close(det.proceed)

	p := NewPreview[int](det.detect, nil, quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)

	// Nobody reads Results while three detections complete.
	for f := 1; f <= 3; f++ {
		for !p.Submit(f * 10) {
			time.Sleep(time.Millisecond)
		}
		<-det.started
		for p.Busy() {
			time.Sleep(time.Millisecond)
		}
	}

	// Stopping the worker guarantees the third publish has happened.
	cancel()
	<-p.Done()

	out := waitOutcome(t, p.Results())
	if out.Seq != 3 {
		t.Errorf("buffered outcome has seq %d, want 3", out.Seq)
	}
	select {
	case extra := <-p.Results():
		t.Errorf("stale outcome still buffered: %+v", extra)
	default:
	}
}

func TestPreview_Shutdown(t *testing.T) {
	det := newBlockingDetector()

	var released atomic.Int32
	p := NewPreview[int](det.detect, func(int) { released.Add(1) }, quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)

	p.Submit(1)
	<-det.started

	// Cancelling does not interrupt the running detection.
	cancel()
	close(det.proceed)

	select {
	case <-p.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not exit after cancellation")
	}

	if _, ok := p.Latest(); ok {
		t.Error("result of a detection finished after shutdown was kept")
	}
	if p.Submit(2) {
		t.Error("frame accepted after shutdown")
	}
	if released.Load() != 2 {
		t.Errorf("released %d frames, want 2", released.Load())
	}
}

func TestDebouncer(t *testing.T) {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	now := base
	d := NewDebouncer(CaptureInterval).WithClock(func() time.Time { return now })

	steps := []struct {
		at   time.Duration
		want bool
	}{
		{0, true},
		{1000 * time.Millisecond, false},
		{2999 * time.Millisecond, false}, // rejected calls do not move the window
		{3000 * time.Millisecond, true},
		{5000 * time.Millisecond, false},
		{6500 * time.Millisecond, true},
	}

	for _, s := range steps {
		now = base.Add(s.at)
		if got := d.Allow(); got != s.want {
			t.Errorf("Allow() at %v = %v, want %v", s.at, got, s.want)
		}
	}
}

func TestDebouncer_Remaining(t *testing.T) {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	now := base
	d := NewDebouncer(CaptureInterval).WithClock(func() time.Time { return now })

	if r := d.Remaining(); r != 0 {
		t.Errorf("Remaining() before any event = %v, want 0", r)
	}

	d.Allow()
	now = base.Add(1200 * time.Millisecond)
	if r := d.Remaining(); r != 1800*time.Millisecond {
		t.Errorf("Remaining() = %v, want 1.8s", r)
	}

	now = base.Add(10 * time.Second)
	if r := d.Remaining(); r != 0 {
		t.Errorf("Remaining() after the window = %v, want 0", r)
	}
}
