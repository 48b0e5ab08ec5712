// Package detection locates the boundary of a paper document in a camera
// frame.
//
// Detect runs a fixed OpenCV pipeline (blur, triangle threshold, Canny,
// dilation, contour extraction, polygon approximation) and returns the
// corners of the first convex quadrilateral found among the largest
// contours. It holds no state; the caller decides how often to call it (see
// the throttle package) and what to do with the answer.
//
// # Coordinate System
//
// Quads are expressed in the pixel coordinates of the frame passed to
// Detect: origin at the top-left, X rightward, Y downward. Result carries
// the frame size so a receiver can move the quad into another resolution
// with geometry.Scale.
//
// # Outcomes
//
// "No boundary" is an ordinary outcome reported as found=false, not an
// error. An empty frame is reported the same way.
//
// # Limitations
//
// The detector assumes a bright page on a darker, reasonably uniform
// background. Because the outline is dilated before contour extraction, the
// returned corners sit a few pixels outside the true paper edge; the
// perspective crop's padding absorbs that offset.
package detection
