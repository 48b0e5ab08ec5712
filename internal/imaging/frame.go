package imaging

import (
	"errors"
	"fmt"

	"github.com/ironsheep/docscan-mcp/internal/geometry"
	"gocv.io/x/gocv"
)

var (
	// ErrInvalidFrame is returned when an input Mat is empty or has no area.
	ErrInvalidFrame = errors.New("invalid frame")

	// ErrTransform is returned when a geometric or photometric transform
	// cannot produce a usable result.
	ErrTransform = errors.New("transform failed")
)

// Valid reports whether m holds pixels.
func Valid(m gocv.Mat) bool {
	return !m.Empty() && m.Rows() > 0 && m.Cols() > 0
}

// SizeOf returns the dimensions of m.
func SizeOf(m gocv.Mat) geometry.Size {
	return geometry.Sz(m.Cols(), m.Rows())
}

// Gray returns a single-channel copy of src. BGR, BGRA and gray inputs are
// accepted.
func Gray(src gocv.Mat) (gocv.Mat, error) {
	if !Valid(src) {
		return gocv.NewMat(), ErrInvalidFrame
	}

	dst := gocv.NewMat()
	switch src.Channels() {
	case 1:
		src.CopyTo(&dst)
	case 3:
		gocv.CvtColor(src, &dst, gocv.ColorBGRToGray)
	case 4:
		gocv.CvtColor(src, &dst, gocv.ColorBGRAToGray)
	default:
		dst.Close()
		return gocv.NewMat(), fmt.Errorf("%w: unsupported channel count %d", ErrInvalidFrame, src.Channels())
	}
	if dst.Empty() {
		dst.Close()
		return gocv.NewMat(), fmt.Errorf("%w: grayscale conversion produced an empty image", ErrTransform)
	}
	return dst, nil
}

// matchChannels converts a single-channel image back to the channel layout
// of like. The returned Mat is always new.
func matchChannels(gray gocv.Mat, like gocv.Mat) gocv.Mat {
	dst := gocv.NewMat()
	switch like.Channels() {
	case 3:
		gocv.CvtColor(gray, &dst, gocv.ColorGrayToBGR)
	case 4:
		gocv.CvtColor(gray, &dst, gocv.ColorGrayToBGRA)
	default:
		gray.CopyTo(&dst)
	}
	return dst
}
