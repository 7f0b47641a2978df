package codec

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"

	"fileforge/internal/common"
	"fileforge/internal/domain/transform"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/webp"
	_ "golang.org/x/image/webp"
)

// webpMethod trades encode speed for size; 4 is libwebp's default.
const webpMethod = 4

// ImageCodec handles JPEG, PNG and WebP.
type ImageCodec struct {
	logger *slog.Logger
}

// NewImageCodec creates a new image codec
func NewImageCodec(logger *slog.Logger) *ImageCodec {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageCodec{logger: logger}
}

// Decode reads an image, applying its EXIF orientation.
func (c *ImageCodec) Decode(data []byte, mimeType string) (*transform.DecodedAsset, error) {
	format, err := Sniff(data, mimeType)
	if err != nil {
		return nil, err
	}
	if !format.IsImage() {
		return nil, fmt.Errorf("%w: %s is not an image", common.ErrUnsupportedFormat, format)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCorruptData, err)
	}
	b := img.Bounds()
	if b.Dx() < 1 || b.Dy() < 1 {
		return nil, fmt.Errorf("%w: empty image", common.ErrCorruptData)
	}

	return &transform.DecodedAsset{
		Format:    format,
		Image:     img,
		HasAlpha:  HasAlpha(img),
		PageCount: 1,
	}, nil
}

// Encode writes img in the requested format. Non-zero Width and Height that
// differ from the source resample it first. JPEG output is always opaque.
func (c *ImageCodec) Encode(img image.Image, params transform.EncodeParameters) ([]byte, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", common.ErrEncode)
	}
	img = Resize(img, params.Width, params.Height)

	var buf bytes.Buffer
	var err error
	switch params.Format {
	case transform.FormatJPEG:
		if HasAlpha(img) {
			img = Flatten(img, color.White)
		}
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(common.Clamp(params.Quality, 1, 100)))
	case transform.FormatPNG:
		err = imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression))
	case transform.FormatWebP:
		err = webp.Encode(&buf, img, webp.Options{
			Quality:  common.Clamp(params.Quality, 1, 100),
			Lossless: params.Lossless,
			Method:   webpMethod,
		})
	default:
		return nil, fmt.Errorf("%w: cannot encode %q", common.ErrUnsupportedFormat, params.Format)
	}
	if err != nil {
		c.logger.Debug("Encoder rejected image", "format", params.Format, "quality", params.Quality, "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrEncode, err)
	}
	return buf.Bytes(), nil
}

// HasAlpha reports whether any pixel is not fully opaque.
func HasAlpha(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return true
			}
		}
	}
	return false
}

// Flatten composites img onto a solid background.
func Flatten(img image.Image, bg color.Color) *image.NRGBA {
	b := img.Bounds()
	canvas := imaging.New(b.Dx(), b.Dy(), bg)
	return imaging.Overlay(canvas, img, image.Pt(0, 0), 1.0)
}

// Resize resamples img to w x h with Lanczos. A zero dimension preserves the
// aspect ratio; both zero, or a size equal to the source, returns img as is.
func Resize(img image.Image, w, h int) image.Image {
	b := img.Bounds()
	if (w == 0 && h == 0) || (w == b.Dx() && h == b.Dy()) {
		return img
	}
	return imaging.Resize(img, w, h, imaging.Lanczos)
}

// ScaledSize returns the dimensions of a w x h raster scaled by factor,
// never below one pixel.
func ScaledSize(w, h int, factor float64) (int, int) {
	sw := int(float64(w)*factor + 0.5)
	sh := int(float64(h)*factor + 0.5)
	return max(sw, 1), max(sh, 1)
}

// FitSquare centers img on a transparent square canvas sized to its longer
// side.
func FitSquare(img image.Image) image.Image {
	b := img.Bounds()
	if b.Dx() == b.Dy() {
		return img
	}
	side := max(b.Dx(), b.Dy())
	canvas := imaging.New(side, side, color.NRGBA{})
	return imaging.PasteCenter(canvas, img)
}
