package session

import (
	"context"
	"errors"
	"sync"
)

// ErrQueueClosed is returned for work submitted after Close.
var ErrQueueClosed = errors.New("edit queue closed")

// Queue runs submitted functions one at a time, in submission order, on a
// single goroutine.
type Queue struct {
	mu     sync.Mutex
	closed bool
	jobs   chan job
	done   chan struct{}
}

type job struct {
	fn     func() error
	result chan error
}

// NewQueue starts a queue that buffers up to backlog pending jobs before
// Submit blocks.
func NewQueue(backlog int) *Queue {
	q := &Queue{
		jobs: make(chan job, max(backlog, 0)),
		done: make(chan struct{}),
	}
	go q.run()
	return q
}

// Submit enqueues fn and returns a channel that receives its error exactly
// once.
func (q *Queue) Submit(fn func() error) <-chan error {
	result := make(chan error, 1)

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		result <- ErrQueueClosed
		return result
	}
	q.jobs <- job{fn: fn, result: result}
	return result
}

// Do enqueues fn and waits for it to finish. If ctx ends first Do returns
// ctx.Err(); a job that was already queued still runs.
func (q *Queue) Do(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	select {
	case err := <-q.Submit(fn):
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting work, lets queued jobs finish, and waits for the
// worker to exit.
func (q *Queue) Close() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()

	<-q.done
}

func (q *Queue) run() {
	defer close(q.done)
	for j := range q.jobs {
		j.result <- j.fn()
	}
}
