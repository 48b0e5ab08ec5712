package imaging

import (
	"image"

	"gocv.io/x/gocv"
)

// RotationStep is the fixed angle, in degrees, applied by Rotate.
const RotationStep = -90

// Rotate returns src turned by RotationStep degrees (a quarter turn
// counter-clockwise). Width and height swap.
func Rotate(src gocv.Mat) (gocv.Mat, error) {
	if !Valid(src) {
		return gocv.NewMat(), ErrInvalidFrame
	}

	dst := gocv.NewMat()
	gocv.Rotate(src, &dst, gocv.Rotate90CounterClockwise)
	return dst, nil
}

// NormalizeAngle folds deg into [0, 360).
func NormalizeAngle(deg int) int {
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	return deg
}

// Portrait returns src turned a quarter turn clockwise when it is wider than
// tall, and a plain copy otherwise. Camera sensors deliver landscape frames;
// documents are read upright.
func Portrait(src gocv.Mat) (gocv.Mat, error) {
	if !Valid(src) {
		return gocv.NewMat(), ErrInvalidFrame
	}

	dst := gocv.NewMat()
	if src.Cols() > src.Rows() {
		gocv.Rotate(src, &dst, gocv.Rotate90Clockwise)
	} else {
		src.CopyTo(&dst)
	}
	return dst, nil
}

// FitWithin returns src scaled down with area interpolation so that it fits
// inside maxWidth x maxHeight, preserving the aspect ratio. Frames already
// inside the bounds, or a non-positive bound, yield a plain copy.
func FitWithin(src gocv.Mat, maxWidth, maxHeight int) (gocv.Mat, error) {
	if !Valid(src) {
		return gocv.NewMat(), ErrInvalidFrame
	}

	w, h := src.Cols(), src.Rows()
	dst := gocv.NewMat()
	if maxWidth <= 0 || maxHeight <= 0 || (w <= maxWidth && h <= maxHeight) {
		src.CopyTo(&dst)
		return dst, nil
	}

	ratio := min(float64(maxWidth)/float64(w), float64(maxHeight)/float64(h))
	nw := max(1, int(float64(w)*ratio))
	nh := max(1, int(float64(h)*ratio))

	gocv.Resize(src, &dst, image.Pt(nw, nh), 0, 0, gocv.InterpolationArea)
	return dst, nil
}
