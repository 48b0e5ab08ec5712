package geometry

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// Order assigns four arbitrary points to the top-left, top-right,
// bottom-right and bottom-left slots.
//
// The rule is a total-order surrogate rather than an angular sort:
//
//	top-left     = min(x+y)
//	top-right    = min(y-x)
//	bottom-right = max(x+y)
//	bottom-left  = max(y-x)
//
// The first point reaching an extreme wins a tie. Degenerate inputs (for
// example a square rotated 45 degrees) can place one point in two slots; that
// outcome is kept as is.
func Order(pts [4]Point) Quad {
	sum := func(p Point) float64 { return p.X + p.Y }
	diff := func(p Point) float64 { return p.Y - p.X }

	tl, tr, br, bl := 0, 0, 0, 0
	for i := 1; i < 4; i++ {
		if sum(pts[i]) < sum(pts[tl]) {
			tl = i
		}
		if diff(pts[i]) < diff(pts[tr]) {
			tr = i
		}
		if sum(pts[i]) > sum(pts[br]) {
			br = i
		}
		if diff(pts[i]) > diff(pts[bl]) {
			bl = i
		}
	}

	return Quad{pts[tl], pts[tr], pts[br], pts[bl]}
}

// Scale maps q from an image of size from into an image of size to.
//
// Each axis is scaled linearly by to/from. Results are clamped into the
// destination bounds [0,to.Width]x[0,to.Height] and not otherwise adjusted.
// An invalid from size returns q unchanged.
func Scale(q Quad, from, to Size) Quad {
	if !from.Valid() {
		return q
	}

	sx := to.Width / from.Width
	sy := to.Height / from.Height

	var out Quad
	for i, p := range q {
		out[i] = Point{
			X: clamp(p.X*sx, 0, to.Width),
			Y: clamp(p.Y*sy, 0, to.Height),
		}
	}
	return out
}

// IsConvex reports whether the closed polygon pts is convex.
//
// Every turn must bend the same way; collinear turns are ignored, but a
// polygon whose turns are all collinear is not convex. A self-intersecting
// four-point polygon (bow-tie) always has turns of both signs and is rejected.
func IsConvex(pts []Point) bool {
	n := len(pts)
	if n < 3 {
		return false
	}

	sign := 0
	for i := 0; i < n; i++ {
		a := r2.Vec(pts[i])
		b := r2.Vec(pts[(i+1)%n])
		c := r2.Vec(pts[(i+2)%n])

		cross := r2.Cross(r2.Sub(b, a), r2.Sub(c, b))
		if cross == 0 {
			continue
		}

		current := 1
		if cross < 0 {
			current = -1
		}
		if sign == 0 {
			sign = current
		} else if current != sign {
			return false
		}
	}

	return sign != 0
}

// clamp constrains v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
