package detection

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/ironsheep/docscan-mcp/internal/geometry"
	"github.com/ironsheep/docscan-mcp/internal/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"gocv.io/x/gocv"
)

// DefaultOutlineColor is used by Annotate when no color is given.
const DefaultOutlineColor = "#00FF00"

// Annotate returns a BGR copy of frame with q drawn as a closed outline and
// a dot on each corner. The outline thickness scales with the frame so it
// stays visible on large captures.
//
// hexColor accepts "#RRGGBB" or "#RGB"; an empty string selects
// DefaultOutlineColor.
func Annotate(frame gocv.Mat, q geometry.Quad, hexColor string) (gocv.Mat, error) {
	if !imaging.Valid(frame) {
		return gocv.NewMat(), imaging.ErrInvalidFrame
	}

	if hexColor == "" {
		hexColor = DefaultOutlineColor
	}
	c, err := colorful.Hex(hexColor)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("invalid outline color %q: %w", hexColor, err)
	}
	r, g, b := c.RGB255()
	outline := color.RGBA{R: r, G: g, B: b, A: 255}

	out := gocv.NewMat()
	switch frame.Channels() {
	case 1:
		gocv.CvtColor(frame, &out, gocv.ColorGrayToBGR)
	case 4:
		gocv.CvtColor(frame, &out, gocv.ColorBGRAToBGR)
	default:
		frame.CopyTo(&out)
	}

	thickness := max(2, int(math.Round(float64(max(out.Cols(), out.Rows()))/300)))

	for i := range q {
		from := toImagePoint(q[i])
		to := toImagePoint(q[(i+1)%len(q)])
		gocv.Line(&out, from, to, outline, thickness)
	}
	for _, p := range q {
		gocv.Circle(&out, toImagePoint(p), thickness*2, outline, -1)
	}

	return out, nil
}

func toImagePoint(p geometry.Point) image.Point {
	return image.Pt(int(math.Round(p.X)), int(math.Round(p.Y)))
}
