package solver

import (
	"image"

	"fileforge/internal/codec"
	"fileforge/internal/domain/transform"
)

// ImageEncoder encodes a single raster.
type ImageEncoder interface {
	Encode(img image.Image, params transform.EncodeParameters) ([]byte, error)
}

// PageComposer writes rasters into a PDF.
type PageComposer interface {
	Compose(pages []transform.PageImage, quality int) ([]byte, error)
}

// ImageSubject encodes one raster. The most recent downscale is cached so
// quality probes within a round resample only once.
type ImageSubject struct {
	img     image.Image
	encoder ImageEncoder

	cachedScale float64
	cached      image.Image
}

// NewImageSubject creates a new image subject
func NewImageSubject(img image.Image, encoder ImageEncoder) *ImageSubject {
	return &ImageSubject{img: img, encoder: encoder}
}

func (s *ImageSubject) Dimensions(scale float64) (int, int) {
	b := s.img.Bounds()
	return codec.ScaledSize(b.Dx(), b.Dy(), scale)
}

func (s *ImageSubject) Encode(scale float64, params transform.EncodeParameters) ([]byte, error) {
	return s.encoder.Encode(s.scaled(scale), params)
}

func (s *ImageSubject) scaled(scale float64) image.Image {
	if scale >= 1 {
		return s.img
	}
	if s.cached == nil || s.cachedScale != scale {
		w, h := s.Dimensions(scale)
		s.cached = codec.Resize(s.img, w, h)
		s.cachedScale = scale
	}
	return s.cached
}

// PageSubject encodes a multi-page document. Scaling lowers the raster
// resolution of every page while the physical page size stays fixed.
type PageSubject struct {
	pages    []transform.PageImage
	composer PageComposer

	cachedScale float64
	cached      []transform.PageImage
}

// NewPageSubject creates a new page subject
func NewPageSubject(pages []transform.PageImage, composer PageComposer) *PageSubject {
	return &PageSubject{pages: pages, composer: composer}
}

// Dimensions reports the size of the first page.
func (s *PageSubject) Dimensions(scale float64) (int, int) {
	b := s.pages[0].Image.Bounds()
	return codec.ScaledSize(b.Dx(), b.Dy(), scale)
}

func (s *PageSubject) Encode(scale float64, params transform.EncodeParameters) ([]byte, error) {
	return s.composer.Compose(s.scaled(scale), params.Quality)
}

func (s *PageSubject) scaled(scale float64) []transform.PageImage {
	if scale >= 1 {
		return s.pages
	}
	if s.cached == nil || s.cachedScale != scale {
		out := make([]transform.PageImage, len(s.pages))
		for i, p := range s.pages {
			b := p.Image.Bounds()
			w, h := codec.ScaledSize(b.Dx(), b.Dy(), scale)
			out[i] = transform.PageImage{Image: codec.Resize(p.Image, w, h), WidthPt: p.WidthPt, HeightPt: p.HeightPt}
		}
		s.cached = out
		s.cachedScale = scale
	}
	return s.cached
}
