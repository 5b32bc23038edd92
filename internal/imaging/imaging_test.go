package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test PNG: %v", err)
	}
	return buf.Bytes()
}

func TestProcessConvertsToJPEG(t *testing.T) {
	photo, err := Process(bytes.NewReader(encodePNG(t, 100, 50)))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if photo.MIME != "image/jpeg" {
		t.Errorf("expected JPEG output, got %q", photo.MIME)
	}

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(photo.Data))
	if err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	if cfg.Width != 100 || cfg.Height != 50 {
		t.Errorf("expected dimensions preserved, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestProcessDownscalesLargePhotos(t *testing.T) {
	photo, err := Process(bytes.NewReader(encodePNG(t, 1600, 400)))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(photo.Data))
	if err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	if cfg.Width != MaxDimension || cfg.Height != 200 {
		t.Errorf("expected %dx200, got %dx%d", MaxDimension, cfg.Width, cfg.Height)
	}
}

func TestProcessRejectsNonImages(t *testing.T) {
	_, err := Process(strings.NewReader("definitely not an image"))
	if err == nil {
		t.Fatal("expected rejection of non-image data")
	}
}

func TestProcessRejectsUnsupportedFormats(t *testing.T) {
	// GIF header sniffs as image/gif, which is not accepted.
	gif := []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;")
	if _, err := Process(bytes.NewReader(gif)); err == nil {
		t.Fatal("expected GIF to be rejected")
	}
}
