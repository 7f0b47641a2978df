package pipeline

import (
	"context"
	"image/color"

	"fileforge/internal/codec"
	"fileforge/internal/common"
	"fileforge/internal/domain/transform"
)

const opOptimize = "optimize"

// optimize caps the width of one image and re-encodes it at a preset
// quality. A result that is no smaller than a same-format source is
// discarded in favour of the source.
func (p *Pipeline) optimize(ctx context.Context, file transform.InputFile, req *transform.OptimizeForWeb, track transform.TrackFunc) ([]transform.JobResult, error) {
	track(transform.StateDecoding)

	asset, err := p.decodeImage(ctx, opOptimize, file)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	track(transform.StateEncoding)

	target := req.Format
	if target == "" {
		target = transform.FormatWebP
	}

	img := asset.Image
	resized := req.MaxWidth > 0 && asset.Width() > req.MaxWidth
	if resized {
		img = codec.Resize(img, req.MaxWidth, 0)
	}

	var warnings []transform.Warning
	if target == transform.FormatJPEG && asset.HasAlpha {
		img = codec.Flatten(img, color.White)
		warnings = append(warnings, transform.WarnTransparencyFlattened)
	}

	params := transform.EncodeParameters{
		Format:   target,
		Quality:  p.cfg.Presets.QualityFor(req.Preset),
		Lossless: target.Lossless(),
	}
	data, err := p.images.Encode(img, params)
	if err != nil {
		return nil, common.NewProcessingError(opOptimize, file.Name, err)
	}

	if !resized && target == asset.Format && int64(len(data)) >= file.Size() {
		p.logger.Debug("Optimized output not smaller, keeping original", "file", file.Name)
		return []transform.JobResult{keepOriginal(file, asset.Format, asset.Width(), asset.Height())}, nil
	}

	b := img.Bounds()
	result := output(file, common.ReplaceExt(file.Name, target.Extension()), params, data, b.Dx(), b.Dy())
	result.Warnings = warnings
	return []transform.JobResult{result}, nil
}
