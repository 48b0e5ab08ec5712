package imaging

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Enhancement constants.
const (
	brightenAlpha = 1.3
	brightenBeta  = 15

	binarizeBlockSize = 11
	binarizeC         = 10
)

// Mode selects the enhancement applied to a cropped document.
type Mode int

const (
	ModeNone Mode = iota
	ModeBrighten
	ModeBinarize
)

// Next returns the mode that follows m in the cycle none, brighten, binarize.
func (m Mode) Next() Mode {
	switch m {
	case ModeNone:
		return ModeBrighten
	case ModeBrighten:
		return ModeBinarize
	default:
		return ModeNone
	}
}

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeBrighten:
		return "brighten"
	case ModeBinarize:
		return "binarize"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Apply runs the enhancement for m on src and returns a new Mat. ModeNone
// returns a copy of src.
func (m Mode) Apply(src gocv.Mat) (gocv.Mat, error) {
	switch m {
	case ModeBrighten:
		return Brighten(src)
	case ModeBinarize:
		return Binarize(src)
	default:
		if !Valid(src) {
			return gocv.NewMat(), ErrInvalidFrame
		}
		dst := src.Clone()
		return dst, nil
	}
}

// Brighten applies dst = saturate(1.3*src + 15) to every channel.
func Brighten(src gocv.Mat) (gocv.Mat, error) {
	if !Valid(src) {
		return gocv.NewMat(), ErrInvalidFrame
	}

	dst := gocv.NewMat()
	src.ConvertToWithParams(&dst, src.Type(), brightenAlpha, brightenBeta)
	if dst.Empty() {
		dst.Close()
		return gocv.NewMat(), fmt.Errorf("%w: brighten produced an empty image", ErrTransform)
	}
	return dst, nil
}

// Binarize converts src to black and white with a Gaussian adaptive threshold
// (block 11, C 10). The result has the same channel layout as src.
func Binarize(src gocv.Mat) (gocv.Mat, error) {
	gray, err := Gray(src)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer gray.Close()

	binary := gocv.NewMat()
	defer binary.Close()
	gocv.AdaptiveThreshold(gray, &binary, 255,
		gocv.AdaptiveThresholdGaussian, gocv.ThresholdBinary, binarizeBlockSize, binarizeC)

	if binary.Empty() {
		return gocv.NewMat(), fmt.Errorf("%w: adaptive threshold produced an empty image", ErrTransform)
	}

	return matchChannels(binary, src), nil
}

// Sharpen convolves src with the 3x3 kernel
//
//	 0 -1  0
//	-1  5 -1
//	 0 -1  0
func Sharpen(src gocv.Mat) (gocv.Mat, error) {
	if !Valid(src) {
		return gocv.NewMat(), ErrInvalidFrame
	}

	kernel := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV32F)
	defer kernel.Close()

	weights := [3][3]float32{
		{0, -1, 0},
		{-1, 5, -1},
		{0, -1, 0},
	}
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			kernel.SetFloatAt(row, col, weights[row][col])
		}
	}

	dst := gocv.NewMat()
	if err := gocv.Filter2D(src, &dst, -1, kernel, image.Pt(-1, -1), 0, gocv.BorderDefault); err != nil {
		dst.Close()
		return gocv.NewMat(), fmt.Errorf("%w: sharpen: %v", ErrTransform, err)
	}
	return dst, nil
}
