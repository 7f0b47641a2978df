package transform

import (
	"image"
	"strings"
)

// Format identifies a supported container format.
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
	FormatWebP Format = "webp"
	FormatPDF  Format = "pdf"
)

// MimeType returns the canonical mime type for the format.
func (f Format) MimeType() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	case FormatPNG:
		return "image/png"
	case FormatWebP:
		return "image/webp"
	case FormatPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

// Extension returns the file extension, including the dot.
func (f Format) Extension() string {
	switch f {
	case FormatJPEG:
		return ".jpg"
	case FormatPNG:
		return ".png"
	case FormatWebP:
		return ".webp"
	case FormatPDF:
		return ".pdf"
	}
	return ""
}

// IsImage reports whether the format is a raster image format.
func (f Format) IsImage() bool {
	return f == FormatJPEG || f == FormatPNG || f == FormatWebP
}

// Lossless reports whether the format has no quality knob.
func (f Format) Lossless() bool {
	return f == FormatPNG
}

// FormatFromMime maps a mime type onto a Format.
func FormatFromMime(mime string) (Format, bool) {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	switch mime {
	case "image/jpeg", "image/jpg", "image/pjpeg":
		return FormatJPEG, true
	case "image/png":
		return FormatPNG, true
	case "image/webp":
		return FormatWebP, true
	case "application/pdf":
		return FormatPDF, true
	}
	return "", false
}

// ParseFormat accepts a format name or a common extension.
func ParseFormat(s string) (Format, bool) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".") {
	case "jpeg", "jpg":
		return FormatJPEG, true
	case "png":
		return FormatPNG, true
	case "webp":
		return FormatWebP, true
	case "pdf":
		return FormatPDF, true
	}
	return "", false
}

// InputFile is one user-supplied file held entirely in memory.
type InputFile struct {
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
	Data     []byte `json:"-"`
}

// Size returns the byte length of the file.
func (f InputFile) Size() int64 {
	return int64(len(f.Data))
}

// DecodedAsset is the in-memory form of a decoded file. Images carry a single
// raster; PDFs carry a page count and only the pages that were rasterized.
type DecodedAsset struct {
	Format    Format
	Image     image.Image
	HasAlpha  bool
	PageCount int
	Pages     []image.Image
}

// Width returns the raster width, or zero for PDFs.
func (a *DecodedAsset) Width() int {
	if a.Image == nil {
		return 0
	}
	return a.Image.Bounds().Dx()
}

// Height returns the raster height, or zero for PDFs.
func (a *DecodedAsset) Height() int {
	if a.Image == nil {
		return 0
	}
	return a.Image.Bounds().Dy()
}

// EncodeParameters are the knobs handed to an encoder. Width and Height of
// zero keep the source dimensions.
type EncodeParameters struct {
	Format   Format `json:"format"`
	Quality  int    `json:"quality"`
	Lossless bool   `json:"lossless"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

// Platform selects an icon set flavour.
type Platform string

const (
	PlatformWeb     Platform = "web"
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
)

// Platforms returns every icon platform in output order.
func Platforms() []Platform {
	return []Platform{PlatformWeb, PlatformIOS, PlatformAndroid}
}

// QualityPreset names an OptimizeForWeb quality level.
type QualityPreset string

const (
	PresetSpeed    QualityPreset = "speed"
	PresetBalanced QualityPreset = "balanced"
	PresetQuality  QualityPreset = "quality"
)
