// Package ocr reads the text of a finished scan using Tesseract.
//
// This package wraps the Tesseract OCR engine (via gosseract/v2). Images
// are passed as gocv.Mat values and handed to Tesseract as in-memory PNG,
// so no temporary files are written.
//
// # Prerequisites
//
// Tesseract and its language data must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// # Languages
//
// The default language is English ("eng"). Any installed Tesseract language
// code may be given, and several can be joined with "+" (for example
// "eng+deu").
//
// # Results
//
// ExtractText returns the full text plus one TextRegion per recognized
// word. If word boxes cannot be extracted the text is still returned with
// an empty Regions slice.
package ocr
