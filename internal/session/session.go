// Package session holds the state of one document being edited after
// capture: the captured frame, its perspective-corrected crop, and the
// enhanced and rotated variants derived from it.
//
// # Lifecycle
//
//	Empty --Commit--> Cropped --Enhance/Sharpen--> Enhanced --Rotate--> Rotated
//	                     ^                                                 |
//	                     +----------------------Reset---------------------+
//
// Save writes the most recent image and ends the session; Close abandons it.
// Either way every Mat the session holds is released.
//
// # Ownership
//
// A Session owns the source frame handed to New and every image it derives.
// Replaced images are closed immediately, so at most one image per stage is
// alive. Transforms are computed before anything is replaced: a failed edit
// leaves the session exactly as it was.
package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ironsheep/docscan-mcp/internal/geometry"
	"github.com/ironsheep/docscan-mcp/internal/imaging"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

var (
	// ErrNotCommitted is returned by edits issued before Commit.
	ErrNotCommitted = errors.New("no crop committed")

	// ErrAlreadyCommitted is returned by Commit once a crop exists.
	ErrAlreadyCommitted = errors.New("crop already committed")

	// ErrClosed is returned by any call after Save or Close.
	ErrClosed = errors.New("session closed")
)

// State is the position of a session in its lifecycle.
type State int

const (
	StateEmpty State = iota
	StateCropped
	StateEnhanced
	StateRotated
	StateSaved
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateCropped:
		return "cropped"
	case StateEnhanced:
		return "enhanced"
	case StateRotated:
		return "rotated"
	case StateSaved:
		return "saved"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Session is one capture being edited. Methods are safe for concurrent use,
// but edits should be sequenced through a Queue so they apply in the order
// they were requested.
type Session struct {
	mu  sync.Mutex
	log logrus.FieldLogger

	state     State
	source    *gocv.Mat
	suggested *geometry.Quad

	cropped  *gocv.Mat
	enhanced *gocv.Mat
	rotated  *gocv.Mat

	mode  imaging.Mode
	angle int
}

// New starts a session on source and takes ownership of it. suggested is
// the detected boundary, or nil when detection found none.
func New(source gocv.Mat, suggested *geometry.Quad, log logrus.FieldLogger) *Session {
	if log == nil {
		log = logrus.StandardLogger()
	}

	s := &Session{
		log:    log,
		state:  StateEmpty,
		source: &source,
	}
	if suggested != nil {
		q := *suggested
		s.suggested = &q
	}

	s.log.WithFields(logrus.Fields{
		"width":     source.Cols(),
		"height":    source.Rows(),
		"suggested": suggested != nil,
	}).Debug("Session opened")

	return s
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Suggested returns the boundary detected at capture time.
func (s *Session) Suggested() (geometry.Quad, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.suggested == nil {
		return geometry.Quad{}, false
	}
	return *s.suggested, true
}

// SourceSize returns the dimensions of the captured frame, or a zero Size
// once the session has ended.
func (s *Session) SourceSize() geometry.Size {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.source == nil {
		return geometry.Size{}
	}
	return imaging.SizeOf(*s.source)
}

// Commit crops the source frame to q. It moves Empty to Cropped; once a crop
// exists it changes nothing and returns ErrAlreadyCommitted.
func (s *Session) Commit(q geometry.Quad) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateSaved, StateClosed:
		return ErrClosed
	case StateEmpty:
	default:
		return ErrAlreadyCommitted
	}

	cropped, err := imaging.Crop(*s.source, q)
	if err != nil {
		cropped.Close()
		return fmt.Errorf("failed to crop: %w", err)
	}

	s.cropped = &cropped
	s.state = StateCropped

	s.log.WithFields(logrus.Fields{
		"state":  s.state.String(),
		"width":  cropped.Cols(),
		"height": cropped.Rows(),
	}).Info("Crop committed")

	return nil
}

// Enhance advances the enhancement mode and applies it to the cropped
// image. The result replaces the enhanced image, and any rotation is
// dropped so the next Rotate starts from the new result. It returns the
// mode now in effect.
func (s *Session) Enhance() (imaging.Mode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireCommitted(); err != nil {
		return s.mode, err
	}

	next := s.mode.Next()
	out, err := next.Apply(*s.cropped)
	if err != nil {
		out.Close()
		return s.mode, fmt.Errorf("failed to apply %s: %w", next, err)
	}

	replace(&s.enhanced, &out)
	replace(&s.rotated, nil)
	s.mode = next
	s.angle = 0
	s.state = StateEnhanced

	s.log.WithFields(logrus.Fields{
		"state": s.state.String(),
		"mode":  s.mode.String(),
	}).Info("Enhancement applied")

	return s.mode, nil
}

// Sharpen sharpens the most recent image and stores the result as the
// enhanced image. The mode is unchanged. A rotated image stays rotated, so
// the angle is kept and further rotations add to it.
func (s *Session) Sharpen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireCommitted(); err != nil {
		return err
	}

	out, err := imaging.Sharpen(*s.latest())
	if err != nil {
		out.Close()
		return fmt.Errorf("failed to sharpen: %w", err)
	}

	replace(&s.enhanced, &out)
	replace(&s.rotated, nil)
	s.state = StateEnhanced

	s.log.WithFields(logrus.Fields{
		"state": s.state.String(),
		"angle": s.angle,
	}).Info("Image sharpened")
	return nil
}

// Rotate turns the most recent image by imaging.RotationStep degrees and
// returns the accumulated angle in [0, 360).
func (s *Session) Rotate() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireCommitted(); err != nil {
		return s.angle, err
	}

	out, err := imaging.Rotate(*s.latest())
	if err != nil {
		out.Close()
		return s.angle, fmt.Errorf("failed to rotate: %w", err)
	}

	replace(&s.rotated, &out)
	s.angle = imaging.NormalizeAngle(s.angle + imaging.RotationStep)
	s.state = StateRotated

	s.log.WithFields(logrus.Fields{
		"state": s.state.String(),
		"angle": s.angle,
	}).Info("Image rotated")

	return s.angle, nil
}

// Reset discards enhancement and rotation, returning to the committed crop.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireCommitted(); err != nil {
		return err
	}

	replace(&s.enhanced, nil)
	replace(&s.rotated, nil)
	s.mode = imaging.ModeNone
	s.angle = 0
	s.state = StateCropped

	s.log.WithField("state", s.state.String()).Info("Edits reset")
	return nil
}

// Save writes the most recent image to path as a JPEG and ends the session.
// If writing fails the session is left as it was so the caller can retry.
func (s *Session) Save(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireCommitted(); err != nil {
		return err
	}

	if err := imaging.WriteJPEG(path, *s.latest()); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}

	s.releaseAll()
	s.state = StateSaved

	s.log.WithFields(logrus.Fields{
		"state": s.state.String(),
		"path":  path,
	}).Info("Document saved")

	return nil
}

// Close abandons the session and releases every image. Calling Close more
// than once, or after Save, does nothing.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateSaved || s.state == StateClosed {
		return
	}

	s.releaseAll()
	s.state = StateClosed
	s.log.WithField("state", s.state.String()).Debug("Session abandoned")
}

// View calls fn with the most recent image. The Mat is borrowed for the
// duration of the call and must not be retained or closed.
func (s *Session) View(fn func(img gocv.Mat) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireCommitted(); err != nil {
		return err
	}
	return fn(*s.latest())
}

// ViewSource calls fn with the captured frame, under the same rules as View.
// It is available until the session ends, including before Commit.
func (s *Session) ViewSource(fn func(img gocv.Mat) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.source == nil {
		return ErrClosed
	}
	return fn(*s.source)
}

// Status is a snapshot of a session for reporting.
type Status struct {
	State     string         `json:"state"`
	Mode      string         `json:"mode"`
	Angle     int            `json:"rotation"`
	Width     int            `json:"width,omitempty"`
	Height    int            `json:"height,omitempty"`
	Source    geometry.Size  `json:"source_size"`
	Suggested *geometry.Quad `json:"suggested,omitempty"`
}

// Status reports the session state, mode, rotation and the size of the most
// recent image.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		State: s.state.String(),
		Mode:  s.mode.String(),
		Angle: s.angle,
	}
	if s.suggested != nil {
		q := *s.suggested
		st.Suggested = &q
	}
	if s.source != nil {
		st.Source = imaging.SizeOf(*s.source)
	}
	if img := s.latest(); img != nil {
		st.Width, st.Height = img.Cols(), img.Rows()
	}
	return st
}

// requireCommitted maps the state to the error an edit should return.
// Callers hold s.mu.
func (s *Session) requireCommitted() error {
	switch s.state {
	case StateSaved, StateClosed:
		return ErrClosed
	case StateEmpty:
		return ErrNotCommitted
	}
	return nil
}

// latest returns the most recent image: rotated, then enhanced, then
// cropped. Callers hold s.mu.
func (s *Session) latest() *gocv.Mat {
	switch {
	case s.rotated != nil:
		return s.rotated
	case s.enhanced != nil:
		return s.enhanced
	default:
		return s.cropped
	}
}

// releaseAll closes every held Mat. Callers hold s.mu.
func (s *Session) releaseAll() {
	replace(&s.rotated, nil)
	replace(&s.enhanced, nil)
	replace(&s.cropped, nil)
	replace(&s.source, nil)
}

// replace closes the Mat in slot, if any, and stores next.
func replace(slot **gocv.Mat, next *gocv.Mat) {
	if *slot != nil {
		(*slot).Close()
	}
	*slot = next
}
