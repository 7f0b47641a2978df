package pipeline

import (
	"context"
	"image/color"

	"fileforge/internal/codec"
	"fileforge/internal/common"
	"fileforge/internal/domain/transform"
)

const opConvert = "convert"

// convert re-encodes one image into target. Transparency is flattened onto
// white when the target cannot carry it.
func (p *Pipeline) convert(ctx context.Context, file transform.InputFile, target transform.Format, track transform.TrackFunc) ([]transform.JobResult, error) {
	track(transform.StateDecoding)

	asset, err := p.decodeImage(ctx, opConvert, file)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	track(transform.StateEncoding)

	img := asset.Image
	var warnings []transform.Warning
	if target == transform.FormatJPEG && asset.HasAlpha {
		img = codec.Flatten(img, color.White)
		warnings = append(warnings, transform.WarnTransparencyFlattened)
	}

	params := transform.EncodeParameters{
		Format:   target,
		Quality:  p.cfg.ConvertQuality,
		Lossless: target.Lossless(),
	}
	data, err := p.images.Encode(img, params)
	if err != nil {
		return nil, common.NewProcessingError(opConvert, file.Name, err)
	}

	result := output(file, common.ReplaceExt(file.Name, target.Extension()), params, data, asset.Width(), asset.Height())
	result.Warnings = warnings

	p.logger.Info("Converted file", "file", file.Name, "from", asset.Format, "to", target, "final_size", result.FinalSize)
	return []transform.JobResult{result}, nil
}
