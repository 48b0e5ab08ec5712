// Package capture reads frames from a camera and feeds them to the live
// boundary preview.
package capture

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"
)

// ErrResourceUnavailable is returned when the camera cannot be opened or
// stops delivering frames.
var ErrResourceUnavailable = errors.New("camera unavailable")

// Source yields frames. Read fills dst and reports false when no frame
// could be read.
type Source interface {
	Read(dst *gocv.Mat) bool
}

// Camera is a Source backed by an OpenCV video capture device.
type Camera struct {
	device string
	vc     *gocv.VideoCapture
}

// Open opens device, either a numeric index such as "0" or a path or URL
// understood by OpenCV.
func Open(device string) (*Camera, error) {
	vc, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open %q: %v", ErrResourceUnavailable, device, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("%w: device %q did not open", ErrResourceUnavailable, device)
	}
	return &Camera{device: device, vc: vc}, nil
}

// Device returns the identifier the camera was opened with.
func (c *Camera) Device() string {
	return c.device
}

// Read grabs the next frame into dst.
func (c *Camera) Read(dst *gocv.Mat) bool {
	return c.vc.Read(dst) && !dst.Empty()
}

// Close releases the device.
func (c *Camera) Close() error {
	return c.vc.Close()
}
