package detection

import (
	"image"
	"sort"

	"github.com/ironsheep/docscan-mcp/internal/geometry"
	"github.com/ironsheep/docscan-mcp/internal/imaging"
	"gocv.io/x/gocv"
)

// Detector tuning. These values are fixed; changing them changes which
// boundaries are found.
const (
	blurKernel     = 5
	triangleThresh = 20
	cannyLow       = 50
	cannyHigh      = 150
	dilateKernel   = 9

	// MinContourArea is the contour area, in pixels, a candidate must exceed.
	MinContourArea = 5000

	// MaxCandidates is how many of the largest contours are kept.
	MaxCandidates = 25

	// ScannedCandidates is how many of the kept contours are tried.
	ScannedCandidates = 5

	approxEpsilon = 0.02
)

// Result is the outcome of a detection, ready for transport.
type Result struct {
	// Found reports whether a document boundary was located.
	Found bool `json:"found"`

	// Quad holds the corners in TL, TR, BR, BL order. Nil when Found is false.
	Quad *geometry.Quad `json:"quad,omitempty"`

	// FrameSize is the size of the frame the quad refers to.
	FrameSize geometry.Size `json:"frame_size"`
}

// NewResult packages the return values of Detect for frame.
func NewResult(frame gocv.Mat, q geometry.Quad, found bool) Result {
	r := Result{Found: found, FrameSize: imaging.SizeOf(frame)}
	if found {
		r.Quad = &q
	}
	return r
}

// candidate is a contour index paired with its area.
type candidate struct {
	index int
	area  float64
}

// Detect locates the most prominent convex four-sided boundary in frame.
//
// The frame is borrowed and never modified. An empty frame, or one with no
// qualifying contour, yields (Quad{}, false). Detect keeps no state and is
// safe to call from several goroutines on different frames.
//
// # Algorithm
//
//  1. Grayscale, then Gaussian blur with a 5x5 kernel
//  2. Triangle threshold followed by Canny edges (50/150)
//  3. Dilation with a 9x9 rectangle to close gaps in the outline
//  4. Contour extraction (full hierarchy, simple chain approximation)
//  5. Contours with area above MinContourArea, largest first, at most
//     MaxCandidates of them
//  6. The first of the top ScannedCandidates whose polygon approximation
//     (epsilon 2% of the closed perimeter) has exactly four convex vertices
//     wins, and its corners are ordered with geometry.Order
//
// The policy is greedy: a smaller document nested inside a larger
// rectangular region is not preferred over that region.
func Detect(frame gocv.Mat) (geometry.Quad, bool) {
	if !imaging.Valid(frame) {
		return geometry.Quad{}, false
	}

	gray, err := imaging.Gray(frame)
	if err != nil {
		return geometry.Quad{}, false
	}
	defer gray.Close()

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Pt(blurKernel, blurKernel), 0, 0, gocv.BorderDefault)
	if blurred.Empty() {
		return geometry.Quad{}, false
	}

	binary := gocv.NewMat()
	defer binary.Close()
	gocv.Threshold(blurred, &binary, triangleThresh, 255, gocv.ThresholdBinary|gocv.ThresholdTriangle)
	if binary.Empty() {
		return geometry.Quad{}, false
	}

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(binary, &edges, cannyLow, cannyHigh)
	if edges.Empty() {
		return geometry.Quad{}, false
	}

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(dilateKernel, dilateKernel))
	defer kernel.Close()

	dilated := gocv.NewMat()
	defer dilated.Close()
	gocv.Dilate(edges, &dilated, kernel)
	if dilated.Empty() {
		return geometry.Quad{}, false
	}

	contours := gocv.FindContours(dilated, gocv.RetrievalTree, gocv.ChainApproxSimple)
	defer contours.Close()

	return firstQuad(contours, largestContours(contours))
}

// firstQuad walks at most ScannedCandidates of candidates in order and
// returns the first one that approximates to a convex quadrilateral.
// Candidates past that limit are never examined, even when one would match.
func firstQuad(contours gocv.PointsVector, candidates []candidate) (geometry.Quad, bool) {
	for i := 0; i < len(candidates) && i < ScannedCandidates; i++ {
		if q, ok := approximateQuad(contours.At(candidates[i].index)); ok {
			return q, true
		}
	}
	return geometry.Quad{}, false
}

// largestContours returns the contours above MinContourArea sorted by area,
// largest first, truncated to MaxCandidates. Equal areas keep their
// extraction order.
func largestContours(contours gocv.PointsVector) []candidate {
	var out []candidate
	for i := 0; i < contours.Size(); i++ {
		area := gocv.ContourArea(contours.At(i))
		if area > MinContourArea {
			out = append(out, candidate{index: i, area: area})
		}
	}

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].area > out[b].area
	})

	if len(out) > MaxCandidates {
		out = out[:MaxCandidates]
	}
	return out
}

// approximateQuad simplifies contour and reports the ordered corners when
// the result is a convex quadrilateral.
func approximateQuad(contour gocv.PointVector) (geometry.Quad, bool) {
	epsilon := approxEpsilon * gocv.ArcLength(contour, true)

	approx := gocv.ApproxPolyDP(contour, epsilon, true)
	defer approx.Close()

	if approx.Size() != 4 {
		return geometry.Quad{}, false
	}

	raw := approx.ToPoints()
	var pts [4]geometry.Point
	for i, p := range raw {
		pts[i] = geometry.Pt(float64(p.X), float64(p.Y))
	}

	if !geometry.IsConvex(pts[:]) {
		return geometry.Quad{}, false
	}

	return geometry.Order(pts), true
}
