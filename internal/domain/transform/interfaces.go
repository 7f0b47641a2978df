package transform

import (
	"context"
	"image"
)

// ImageCodec decodes and encodes raster formats.
type ImageCodec interface {
	Decode(data []byte, mimeType string) (*DecodedAsset, error)
	Encode(img image.Image, params EncodeParameters) ([]byte, error)
}

// PageImage is one raster page with its physical size in points.
type PageImage struct {
	Image    image.Image
	WidthPt  float64
	HeightPt float64
}

// PDFCodec reads and writes PDF documents. Page numbers are 1-based.
type PDFCodec interface {
	PageCount(data []byte) (int, error)
	Rasterize(data []byte, pages []int, dpi float64) ([]PageImage, error)
	Compose(pages []PageImage, quality int) ([]byte, error)
}

// TrackFunc records a job state transition.
type TrackFunc func(state JobState)

// TaskFunc runs one job and returns its results.
type TaskFunc func(ctx context.Context, track TrackFunc) ([]JobResult, error)

// Task is one schedulable job of a batch.
type Task struct {
	Index        int
	Name         string
	OriginalSize int64
	Run          TaskFunc
}
