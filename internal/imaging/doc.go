// Package imaging provides the frame operations of the document scanner:
// perspective correction, enhancement, rotation, encoding and file loading.
//
// All pixel work runs on gocv.Mat values. Unless a function says otherwise:
//
//   - input Mats are borrowed and never modified
//   - every returned Mat is new and owned by the caller, who must Close it
//   - on error the returned Mat is empty (closing it is harmless)
//
// # Coordinate System
//
// Coordinates are 0-based with (0,0) at the top-left corner, X increasing
// rightward and Y increasing downward, matching the geometry package.
//
// # Perspective Correction
//
// Crop warps the region inside a geometry.Quad onto an upright canvas whose
// width is the longer of the quad's horizontal edges and whose height is the
// longer of its vertical edges. Destination corners are inset by CropPadding.
//
// # Enhancement
//
// Three enhancement modes cycle in a fixed order (none, brighten, binarize).
// Brighten is a saturating affine map, Binarize a Gaussian adaptive
// threshold that keeps the source channel layout, and Sharpen a 3x3
// convolution offered outside the cycle.
//
// # Loading
//
// ImageCache decodes PNG, JPEG, GIF, TIFF, BMP and WebP files with EXIF
// orientation applied and hands out fresh BGR Mats. The cache is safe for
// concurrent use.
package imaging
