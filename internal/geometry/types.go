package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Point is a position in floating-point image coordinates.
type Point struct {
	X float64 `json:"x"` // Horizontal position (0 = leftmost)
	Y float64 `json:"y"` // Vertical position (0 = topmost)
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return r2.Norm(r2.Sub(r2.Vec(p), r2.Vec(q)))
}

// Size is the width and height of an image.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Sz is shorthand for Size{Width: w, Height: h}.
func Sz(w, h int) Size {
	return Size{Width: float64(w), Height: float64(h)}
}

// Valid reports whether both dimensions are positive.
func (s Size) Valid() bool {
	return s.Width > 0 && s.Height > 0
}

// Corner indexes into a Quad.
const (
	TopLeft = iota
	TopRight
	BottomRight
	BottomLeft
)

// Quad is a four-corner polygon. Once produced by Order the corners are
// top-left, top-right, bottom-right, bottom-left.
type Quad [4]Point

// Points returns the corners as a slice, in stored order.
func (q Quad) Points() []Point {
	return []Point{q[0], q[1], q[2], q[3]}
}

// Area returns the absolute shoelace area of the polygon q[0]..q[3].
func (q Quad) Area() float64 {
	var sum float64
	for i := 0; i < 4; i++ {
		sum += r2.Cross(r2.Vec(q[i]), r2.Vec(q[(i+1)%4]))
	}
	return math.Abs(sum) / 2
}

// FullFrame returns the quad covering the whole of an image of size s.
func FullFrame(s Size) Quad {
	return Quad{
		{X: 0, Y: 0},
		{X: s.Width, Y: 0},
		{X: s.Width, Y: s.Height},
		{X: 0, Y: s.Height},
	}
}
