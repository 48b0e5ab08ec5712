package capture

import (
	"context"
	"fmt"

	"github.com/ironsheep/docscan-mcp/internal/imaging"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// DefaultMaxFailures is how many consecutive empty reads end a run.
const DefaultMaxFailures = 30

// Sink takes ownership of submitted frames.
type Sink interface {
	Submit(frame gocv.Mat) bool
}

// Options tune Run.
type Options struct {
	// Portrait turns landscape frames upright before submission.
	Portrait bool

	// MaxFailures overrides DefaultMaxFailures when positive.
	MaxFailures int

	Log logrus.FieldLogger
}

// Run reads frames from src into new Mats and hands each one to sink until
// ctx is cancelled. It returns nil on cancellation and an error wrapping
// ErrResourceUnavailable when the source stops delivering.
func Run(ctx context.Context, src Source, sink Sink, opts Options) error {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	maxFailures := opts.MaxFailures
	if maxFailures <= 0 {
		maxFailures = DefaultMaxFailures
	}

	failures := 0
	frames := 0
	for ctx.Err() == nil {
		frame := gocv.NewMat()
		if !src.Read(&frame) {
			frame.Close()
			failures++
			if failures >= maxFailures {
				return fmt.Errorf("%w: %d consecutive empty reads", ErrResourceUnavailable, failures)
			}
			continue
		}
		failures = 0
		frames++

		if opts.Portrait {
			upright, err := imaging.Portrait(frame)
			frame.Close()
			if err != nil {
				upright.Close()
				log.WithError(err).Warn("Failed to rotate frame")
				continue
			}
			frame = upright
		}

		if !sink.Submit(frame) {
			log.WithField("frame", frames).Trace("Frame dropped")
		}
	}

	log.WithField("frames", frames).Debug("Capture stopped")
	return nil
}
