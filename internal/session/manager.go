package session

import (
	"context"
	"errors"

	"github.com/ironsheep/docscan-mcp/internal/geometry"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// ErrNoSession is returned when an edit arrives with no capture open.
var ErrNoSession = errors.New("no active session")

// queueBacklog bounds the number of edits waiting behind the running one.
const queueBacklog = 16

// Manager keeps at most one active Session and applies every operation on
// it through a single Queue.
type Manager struct {
	log    logrus.FieldLogger
	queue  *Queue
	active *Session // touched only on the queue goroutine
}

// NewManager returns a Manager with its own queue.
func NewManager(log logrus.FieldLogger) *Manager {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Manager{
		log:   log,
		queue: NewQueue(queueBacklog),
	}
}

// Open abandons any active session and starts a new one on source, which
// the Manager now owns. Once queued the switch happens even if ctx ends
// while waiting for it.
func (m *Manager) Open(ctx context.Context, source gocv.Mat, suggested *geometry.Quad) error {
	result := m.queue.Submit(func() error {
		if m.active != nil {
			m.active.Close()
		}
		m.active = New(source, suggested, m.log)
		return nil
	})

	select {
	case err := <-result:
		if errors.Is(err, ErrQueueClosed) {
			source.Close()
		}
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do runs fn on the active session after every previously submitted
// operation has finished.
func (m *Manager) Do(ctx context.Context, fn func(s *Session) error) error {
	return m.queue.Do(ctx, func() error {
		if m.active == nil {
			return ErrNoSession
		}
		return fn(m.active)
	})
}

// Abandon closes the active session. It reports ErrNoSession when there is
// nothing to abandon.
func (m *Manager) Abandon(ctx context.Context) error {
	return m.queue.Do(ctx, func() error {
		if m.active == nil {
			return ErrNoSession
		}
		m.active.Close()
		m.active = nil
		return nil
	})
}

// Close abandons the active session and stops the queue.
func (m *Manager) Close() {
	done := m.queue.Submit(func() error {
		if m.active != nil {
			m.active.Close()
			m.active = nil
		}
		return nil
	})
	<-done
	m.queue.Close()
}
