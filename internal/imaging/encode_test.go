package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"gocv.io/x/gocv"
)

func TestEncodeJPEG(t *testing.T) {
	src := solidFrame(t, 64, 48, color.RGBA{250, 250, 250, 255})
	defer src.Close()

	data, err := EncodeJPEG(src)
	if err != nil {
		t.Fatalf("EncodeJPEG failed: %v", err)
	}

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a JPEG: %v", err)
	}
	if cfg.Width != 64 || cfg.Height != 48 {
		t.Errorf("dimensions: got %dx%d, want 64x48", cfg.Width, cfg.Height)
	}
}

func TestWriteJPEG(t *testing.T) {
	src := newFrame(t, 80, 60, color.Black, image.Rect(10, 10, 70, 50), color.White)
	defer src.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "scan.jpg")

	if err := WriteJPEG(path, src); err != nil {
		t.Fatalf("WriteJPEG failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("output missing: %v", err)
	}
	defer f.Close()

	img, err := jpeg.Decode(f)
	if err != nil {
		t.Fatalf("output is not a JPEG: %v", err)
	}
	if img.Bounds().Dx() != 80 || img.Bounds().Dy() != 60 {
		t.Errorf("dimensions: got %dx%d, want 80x60", img.Bounds().Dx(), img.Bounds().Dy())
	}

	// Only the final file remains.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("directory holds %d entries, want 1", len(entries))
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("Stat failed: %v", err)
		}
		if got := info.Mode().Perm(); got != SavedFileMode {
			t.Errorf("file mode: got %v, want %v", got, SavedFileMode)
		}
	}
}

func TestWriteJPEG_MissingDirectory(t *testing.T) {
	src := solidFrame(t, 10, 10, color.White)
	defer src.Close()

	path := filepath.Join(t.TempDir(), "missing", "scan.jpg")
	if err := WriteJPEG(path, src); err == nil {
		t.Error("expected error for a missing directory")
	}
}

func TestWriteJPEG_InvalidFrame(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()

	err := WriteJPEG(filepath.Join(t.TempDir(), "scan.jpg"), empty)
	if !errors.Is(err, ErrInvalidFrame) {
		t.Errorf("error: got %v, want ErrInvalidFrame", err)
	}
}

func TestPreview(t *testing.T) {
	src := solidFrame(t, 400, 200, color.RGBA{0, 128, 255, 255})
	defer src.Close()

	result, err := Preview(src, 100)
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}

	if result.Width != 100 || result.Height != 50 {
		t.Errorf("dimensions: got %dx%d, want 100x50", result.Width, result.Height)
	}
	if result.MimeType != "image/png" {
		t.Errorf("MimeType: got %s, want image/png", result.MimeType)
	}

	data, err := base64.StdEncoding.DecodeString(result.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode png: %v", err)
	}

	r, g, b, _ := img.At(50, 25).RGBA()
	if r>>8 > 5 || g>>8 < 120 || g>>8 > 136 || b>>8 < 250 {
		t.Errorf("centre colour: got rgb(%d,%d,%d), want about rgb(0,128,255)", r>>8, g>>8, b>>8)
	}
}

func TestPreview_NoUpscale(t *testing.T) {
	src := solidFrame(t, 40, 30, color.White)
	defer src.Close()

	result, err := Preview(src, 1000)
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}
	if result.Width != 40 || result.Height != 30 {
		t.Errorf("dimensions: got %dx%d, want 40x30", result.Width, result.Height)
	}
}
