// Package pipeline turns operation requests into schedulable tasks.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"fileforge/internal/codec"
	"fileforge/internal/common"
	"fileforge/internal/config"
	"fileforge/internal/domain/transform"
	"fileforge/internal/metrics"
	"fileforge/internal/solver"
)

// Pipeline owns the codecs and the solver and builds the tasks of a batch.
type Pipeline struct {
	cfg     *config.Config
	images  transform.ImageCodec
	pdfs    transform.PDFCodec
	solver  *solver.Solver
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates a new pipeline
func New(cfg *config.Config, images transform.ImageCodec, pdfs transform.PDFCodec, m *metrics.Metrics) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		images: images,
		pdfs:   pdfs,
		solver: solver.New(solver.Options{
			QualityMin:         cfg.QualityMin,
			QualityMax:         cfg.QualityMax,
			DownscaleFactor:    cfg.DownscaleFactor,
			MaxDownscaleRounds: cfg.MaxDownscaleRounds,
		}, cfg.Logger),
		metrics: m,
		logger:  cfg.Logger,
	}
}

type fileFunc func(ctx context.Context, file transform.InputFile, track transform.TrackFunc) ([]transform.JobResult, error)

// Plan expands a request into tasks, one per independent job, in input
// order. The request is assumed to be validated.
func (p *Pipeline) Plan(req transform.OperationRequest) ([]transform.Task, error) {
	switch r := req.(type) {
	case *transform.CompressForLimit:
		budget := Budget(r.TargetMaxBytes, p.cfg.SafetyFactor)
		return perFile(r.Files, func(ctx context.Context, f transform.InputFile, track transform.TrackFunc) ([]transform.JobResult, error) {
			return p.compress(ctx, f, budget, track)
		}), nil

	case *transform.ConvertFormat:
		return perFile(r.Files, func(ctx context.Context, f transform.InputFile, track transform.TrackFunc) ([]transform.JobResult, error) {
			return p.convert(ctx, f, r.TargetFormat, track)
		}), nil

	case *transform.OptimizeForWeb:
		return perFile(r.Files, func(ctx context.Context, f transform.InputFile, track transform.TrackFunc) ([]transform.JobResult, error) {
			return p.optimize(ctx, f, r, track)
		}), nil

	case *transform.PdfCompose:
		name := r.OutputName
		if name == "" {
			name = "combined.pdf"
		}
		var size int64
		for _, f := range r.Files {
			size += f.Size()
		}
		return []transform.Task{{
			Index:        0,
			Name:         name,
			OriginalSize: size,
			Run: func(ctx context.Context, track transform.TrackFunc) ([]transform.JobResult, error) {
				return p.compose(ctx, r.Files, name, track)
			},
		}}, nil

	case *transform.PdfSplit:
		return single(r.File, func(ctx context.Context, f transform.InputFile, track transform.TrackFunc) ([]transform.JobResult, error) {
			return p.split(ctx, f, r.PageSelection, track)
		}), nil

	case *transform.PdfExtractImages:
		return single(r.File, func(ctx context.Context, f transform.InputFile, track transform.TrackFunc) ([]transform.JobResult, error) {
			return p.extract(ctx, f, r.PageSelection, r.Format, track)
		}), nil

	case *transform.GenerateIconSet:
		return single(r.File, func(ctx context.Context, f transform.InputFile, track transform.TrackFunc) ([]transform.JobResult, error) {
			return p.icons(ctx, f, r, track)
		}), nil
	}
	return nil, common.NewRequestError("operation", fmt.Errorf("%w: %T", common.ErrInvalidRequest, req))
}

// Budget applies the safety margin to a target size.
func Budget(target int64, safety float64) int64 {
	return int64(float64(target) * safety)
}

func perFile(files []transform.InputFile, fn fileFunc) []transform.Task {
	tasks := make([]transform.Task, len(files))
	for i, f := range files {
		tasks[i] = transform.Task{
			Index:        i,
			Name:         f.Name,
			OriginalSize: f.Size(),
			Run: func(ctx context.Context, track transform.TrackFunc) ([]transform.JobResult, error) {
				return fn(ctx, f, track)
			},
		}
	}
	return tasks
}

func single(file transform.InputFile, fn fileFunc) []transform.Task {
	return perFile([]transform.InputFile{file}, fn)
}

// output builds a Success result for one artifact.
func output(src transform.InputFile, name string, params transform.EncodeParameters, data []byte, w, h int) transform.JobResult {
	return transform.JobResult{
		SourceName:   src.Name,
		Status:       transform.StatusSuccess,
		OutputName:   name,
		MimeType:     params.Format.MimeType(),
		Output:       data,
		OriginalSize: src.Size(),
		FinalSize:    int64(len(data)),
		Width:        w,
		Height:       h,
		Params:       &params,
	}
}

// keepOriginal returns the source bytes untouched.
func keepOriginal(src transform.InputFile, format transform.Format, w, h int, warnings ...transform.Warning) transform.JobResult {
	r := output(src, src.Name, transform.EncodeParameters{Format: format}, src.Data, w, h)
	r.Params = nil
	r.Warnings = append(warnings, transform.WarnKeptOriginal)
	return r
}

func (p *Pipeline) decodeImage(ctx context.Context, op string, file transform.InputFile) (*transform.DecodedAsset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	asset, err := p.images.Decode(file.Data, file.MimeType)
	if err != nil {
		return nil, common.NewProcessingError(op, file.Name, err)
	}
	return asset, nil
}

// pageOf wraps a decoded image as a page sized at the raster DPI.
func (p *Pipeline) pageOf(img *transform.DecodedAsset) transform.PageImage {
	return transform.PageImage{
		Image:    img.Image,
		WidthPt:  float64(img.Width()) * codec.PointsPerInch / p.cfg.RasterDPI,
		HeightPt: float64(img.Height()) * codec.PointsPerInch / p.cfg.RasterDPI,
	}
}
