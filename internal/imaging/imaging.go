// Package imaging normalizes tile photos before they are stored. Photos
// come straight off warehouse phones at full camera resolution; stored
// as-is they would dominate the database file, so every upload is
// downscaled and re-encoded to one predictable format.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
)

// MaxDimension caps either side of a stored photo. The UI shows photos as
// thumbnails and a mid-size detail view; 800px covers both without a
// multi-megabyte blob per tile model.
const MaxDimension = 800

// JPEGQuality is the re-encode quality. At 82 a typical tile face photo
// lands well under 100KB with no banding visible on glazed surfaces.
const JPEGQuality = 82

// AllowedMIME lists the input formats uploads may use. Everything is
// re-encoded to JPEG on the way in regardless.
var AllowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Photo is a normalized tile photo ready for storage.
type Photo struct {
	Data []byte
	MIME string
}

// Process validates, downscales, and re-encodes one uploaded photo. The
// format check sniffs the bytes; the client's Content-Type header never
// enters into it.
func Process(r io.Reader) (*Photo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading photo data: %w", err)
	}

	detected := http.DetectContentType(data)
	if !AllowedMIME[detected] {
		return nil, fmt.Errorf("unsupported photo format: %s (only JPEG and PNG accepted)", detected)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding photo: %w", err)
	}

	img = downscale(img, MaxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}

	return &Photo{Data: buf.Bytes(), MIME: "image/jpeg"}, nil
}

// downscale fits img within maxDim on its longer side, keeping aspect
// ratio. Images already within bounds pass through untouched, so photos
// that were resized once never degrade on re-upload.
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}

	newW, newH := w, h
	if w > h {
		newW = maxDim
		newH = int(float64(h) * float64(maxDim) / float64(w))
	} else {
		newH = maxDim
		newW = int(float64(w) * float64(maxDim) / float64(h))
	}
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	// CatmullRom over the cheaper kernels: tile faces are mostly straight
	// grout lines and edges, where nearest-neighbor aliasing is obvious.
	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

func init() {
	image.RegisterFormat("jpeg", "\xff\xd8", jpeg.Decode, jpeg.DecodeConfig)
	image.RegisterFormat("png", "\x89PNG", png.Decode, png.DecodeConfig)
}
