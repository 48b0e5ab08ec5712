// Package geometry provides the point, size and quadrilateral types shared by
// the detector, the perspective corrector and the edit session.
//
// # Coordinate System
//
// Coordinates are floating-point image coordinates with (0,0) at the top-left
// corner, X increasing rightward and Y increasing downward.
//
// # Corner Order
//
// A Quad produced by Order always holds its corners as top-left, top-right,
// bottom-right, bottom-left. The assignment rule is:
//
//   - top-left: smallest x+y
//   - top-right: smallest y-x
//   - bottom-right: largest x+y
//   - bottom-left: largest y-x
//
// Ties go to the point encountered first. The perspective corrector relies on
// exactly this assignment, so the rule must not be replaced by an angular sort.
//
// # Coordinate Spaces
//
// Detection may run on a preview-sized frame while cropping runs on the full
// capture. Moving a Quad between the two is always an explicit Scale call with
// both sizes; nothing in this module rescales implicitly.
package geometry
