// Package testutil synthesizes image and document fixtures for tests.
package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand"
	"testing"

	"github.com/disintegration/imaging"
)

// Gradient returns an opaque w x h image with smooth colour ramps.
func Gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / max(w-1, 1)),
				G: uint8(y * 255 / max(h-1, 1)),
				B: uint8((x + y) * 255 / max(w+h-2, 1)),
				A: 255,
			})
		}
	}
	return img
}

// Noise returns an opaque image of seeded random pixels, which compresses
// poorly.
func Noise(w, h int, seed int64) *image.NRGBA {
	r := rand.New(rand.NewSource(seed))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	r.Read(img.Pix)
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	return img
}

// TransparentCorner returns a gradient whose top-left quarter is fully
// transparent.
func TransparentCorner(w, h int) *image.NRGBA {
	img := Gradient(w, h)
	for y := 0; y < h/2; y++ {
		for x := 0; x < w/2; x++ {
			img.SetNRGBA(x, y, color.NRGBA{})
		}
	}
	return img
}

// JPEG encodes img at quality.
func JPEG(t testing.TB, img image.Image, quality int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		t.Fatalf("Failed to encode JPEG fixture: %v", err)
	}
	return buf.Bytes()
}

// PNG encodes img losslessly.
func PNG(t testing.TB, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode PNG fixture: %v", err)
	}
	return buf.Bytes()
}

// CorruptJPEG returns bytes with a JPEG signature and an unreadable body.
func CorruptJPEG() []byte {
	data := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}
	return append(data, bytes.Repeat([]byte{0x13, 0x37}, 64)...)
}

// Decode reads any registered image format.
func Decode(t testing.TB, data []byte) image.Image {
	t.Helper()
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Failed to decode output: %v", err)
	}
	return img
}

// MeanAbsDiff returns the mean absolute per-channel difference of two
// images on a 0..255 scale. b is resampled to a's size when they differ.
func MeanAbsDiff(a, b image.Image) float64 {
	ab := a.Bounds()
	if b.Bounds().Dx() != ab.Dx() || b.Bounds().Dy() != ab.Dy() {
		b = imaging.Resize(b, ab.Dx(), ab.Dy(), imaging.Lanczos)
	}
	na := imaging.Clone(a)
	nb := imaging.Clone(b)

	var sum float64
	for i := 0; i < len(na.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			d := int(na.Pix[i+c]) - int(nb.Pix[i+c])
			if d < 0 {
				d = -d
			}
			sum += float64(d)
		}
	}
	return sum / float64(len(na.Pix)/4*3)
}
