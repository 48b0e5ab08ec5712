package ocr

import (
	"fmt"
	"image"

	"github.com/otiai10/gosseract/v2"
	"gocv.io/x/gocv"
)

// DefaultLanguage is the Tesseract language used when none is given.
const DefaultLanguage = "eng"

// Bounds represents a rectangular bounding box in pixel coordinates.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// TextRegion represents a word with its location and OCR confidence.
type TextRegion struct {
	// Text is the recognized word.
	Text string `json:"text"`

	// Confidence is the OCR confidence score (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	// Bounds is the bounding box around the word in the scanned image.
	Bounds Bounds `json:"bounds"`
}

// OCRResult contains the complete results of text extraction from a scan.
type OCRResult struct {
	// FullText is all recognized text with the original line breaks.
	FullText string `json:"full_text"`

	// Regions contains individual words with their bounding boxes. It may be
	// empty when box extraction fails; FullText is still filled in.
	Regions []TextRegion `json:"regions"`

	// Language is the Tesseract language the text was read with.
	Language string `json:"language"`
}

// ExtractText reads the text of a scanned document.
//
// Parameters:
//   - img: The scan, in any channel layout gocv can encode. Borrowed.
//   - language: Tesseract language code such as "eng"; empty selects
//     DefaultLanguage. The language data must be installed.
//
// Returns:
//   - *OCRResult: Full text plus word-level boxes in img coordinates.
//   - error: Non-nil if the image cannot be encoded or Tesseract fails.
func ExtractText(img gocv.Mat, language string) (*OCRResult, error) {
	if img.Empty() {
		return nil, fmt.Errorf("failed to read text: empty image")
	}
	if language == "" {
		language = DefaultLanguage
	}

	buf, err := gocv.IMEncode(gocv.PNGFileExt, img)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	defer buf.Close()

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(language); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}

	if err := client.SetImageFromBytes(buf.GetBytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	result := &OCRResult{
		FullText: text,
		Regions:  []TextRegion{},
		Language: language,
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return result, nil
	}

	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		result.Regions = append(result.Regions, TextRegion{
			Text:       box.Word,
			Confidence: box.Confidence / 100.0,
			Bounds:     toBounds(box.Box),
		})
	}

	return result, nil
}

// ExtractTextFromRegion reads text inside r only. Returned boxes are in the
// coordinates of img, not of the region. r is clipped to the image.
func ExtractTextFromRegion(img gocv.Mat, r image.Rectangle, language string) (*OCRResult, error) {
	r = r.Intersect(image.Rect(0, 0, img.Cols(), img.Rows()))
	if r.Empty() {
		return nil, fmt.Errorf("failed to read text: region %v lies outside the image", r)
	}

	region := img.Region(r)
	defer region.Close()

	result, err := ExtractText(region, language)
	if err != nil {
		return nil, err
	}

	for i := range result.Regions {
		result.Regions[i].Bounds.X1 += r.Min.X
		result.Regions[i].Bounds.Y1 += r.Min.Y
		result.Regions[i].Bounds.X2 += r.Min.X
		result.Regions[i].Bounds.Y2 += r.Min.Y
	}

	return result, nil
}

// Version returns the version of the linked Tesseract library.
func Version() string {
	return gosseract.Version()
}

func toBounds(r image.Rectangle) Bounds {
	return Bounds{X1: r.Min.X, Y1: r.Min.Y, X2: r.Max.X, Y2: r.Max.Y}
}
