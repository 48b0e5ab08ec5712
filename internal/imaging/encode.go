package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"
)

// JPEGQuality is the quality used for saved documents.
const JPEGQuality = 100

// SavedFileMode is the permission of a written JPEG.
const SavedFileMode os.FileMode = 0o644

// EncodeJPEG encodes src as a JPEG at JPEGQuality.
func EncodeJPEG(src gocv.Mat) ([]byte, error) {
	if !Valid(src) {
		return nil, ErrInvalidFrame
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, src, []int{gocv.IMWriteJpegQuality, JPEGQuality})
	if err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	defer buf.Close()

	// GetBytes aliases native memory released by Close.
	out := bytes.Clone(buf.GetBytes())
	return out, nil
}

// WriteJPEG encodes src and writes it to path. The bytes go to a temporary
// file in the same directory which is then renamed over path, so readers
// never observe a partial file.
func WriteJPEG(path string, src gocv.Mat) error {
	data, err := EncodeJPEG(src)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".docscan-*.jpg")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write image: %w", err)
	}
	// CreateTemp opens with 0600; saved scans are ordinary files.
	if err := tmp.Chmod(SavedFileMode); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to rename image: %w", err)
	}

	return nil
}

// PreviewResult contains a downscaled PNG rendering of a frame.
type PreviewResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Preview renders src as a PNG no larger than maxSize on either side.
func Preview(src gocv.Mat, maxSize int) (*PreviewResult, error) {
	if !Valid(src) {
		return nil, ErrInvalidFrame
	}

	img, err := src.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert frame: %w", err)
	}

	thumb := img
	if maxSize > 0 {
		thumb = imaging.Fit(img, maxSize, maxSize, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, thumb); err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}

	return &PreviewResult{
		Width:       thumb.Bounds().Dx(),
		Height:      thumb.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
