package imaging

import (
	"fmt"
	"image"
	"math"

	"github.com/ironsheep/docscan-mcp/internal/geometry"
	"gocv.io/x/gocv"
)

// CropPadding is the inset, in output pixels, applied to every destination
// corner of a perspective crop.
const CropPadding = 8

// minQuadArea is the smallest source quad area accepted by Crop.
const minQuadArea = 1.0

// CropSize returns the output canvas dimensions for a perspective crop of q.
//
// The width is the longer of the bottom and top edges, the height the longer
// of the right and left edges. Both are rounded up to whole pixels.
func CropSize(q geometry.Quad) (width, height int) {
	tl, tr, br, bl := q[geometry.TopLeft], q[geometry.TopRight], q[geometry.BottomRight], q[geometry.BottomLeft]

	w := math.Max(br.Distance(bl), tr.Distance(tl))
	h := math.Max(tr.Distance(br), tl.Distance(bl))

	// Absorb float noise so 100.0000000001 stays 100.
	return int(math.Ceil(w - 1e-9)), int(math.Ceil(h - 1e-9))
}

// Crop maps the region enclosed by q onto an upright rectangle.
//
// Parameters:
//   - src: Source frame. Borrowed; never modified.
//   - q: Corners in TL, TR, BR, BL order, in src pixel coordinates.
//
// Returns:
//   - gocv.Mat: A new Mat of CropSize(q) owned by the caller.
//   - error: ErrInvalidFrame for an empty source, ErrTransform when the quad
//     is degenerate or the solve fails.
//
// # Padding
//
// The destination corners are (p,p), (w-p,p), (w-p,h-p), (p,h-p) with
// p = CropPadding, so the quad lands slightly inside the output canvas and the
// outer band holds whatever lies just beyond the quad.
func Crop(src gocv.Mat, q geometry.Quad) (gocv.Mat, error) {
	if !Valid(src) {
		return gocv.NewMat(), ErrInvalidFrame
	}

	width, height := CropSize(q)
	// The padded destination corners must still enclose a positive area.
	if width <= 2*CropPadding || height <= 2*CropPadding {
		return gocv.NewMat(), fmt.Errorf("%w: output canvas %dx%d is within the %dpx padding",
			ErrTransform, width, height, CropPadding)
	}
	if q.Area() < minQuadArea {
		return gocv.NewMat(), fmt.Errorf("%w: quad area %.2f is too small", ErrTransform, q.Area())
	}

	w, h := float32(width), float32(height)
	p := float32(CropPadding)

	srcPts := gocv.NewPoint2fVectorFromPoints(toPoint2f(q))
	defer srcPts.Close()

	dstPts := gocv.NewPoint2fVectorFromPoints([]gocv.Point2f{
		{X: p, Y: p},
		{X: w - p, Y: p},
		{X: w - p, Y: h - p},
		{X: p, Y: h - p},
	})
	defer dstPts.Close()

	transform := gocv.GetPerspectiveTransform2f(srcPts, dstPts)
	defer transform.Close()

	if transform.Empty() {
		return gocv.NewMat(), fmt.Errorf("%w: perspective solve returned no matrix", ErrTransform)
	}

	dst := gocv.NewMat()
	gocv.WarpPerspective(src, &dst, transform, image.Pt(width, height))
	if dst.Empty() {
		dst.Close()
		return gocv.NewMat(), fmt.Errorf("%w: warp produced an empty image", ErrTransform)
	}

	return dst, nil
}

func toPoint2f(q geometry.Quad) []gocv.Point2f {
	pts := make([]gocv.Point2f, len(q))
	for i, p := range q {
		pts[i] = gocv.Point2f{X: float32(p.X), Y: float32(p.Y)}
	}
	return pts
}
