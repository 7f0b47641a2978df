package pipeline

import (
	"context"

	"fileforge/internal/codec"
	"fileforge/internal/common"
	"fileforge/internal/domain/transform"
	"fileforge/internal/solver"
)

const opCompress = "compress"

// compress fits one file under budget, keeping its format. Files that
// already fit are returned unchanged.
func (p *Pipeline) compress(ctx context.Context, file transform.InputFile, budget int64, track transform.TrackFunc) ([]transform.JobResult, error) {
	track(transform.StateDecoding)

	format, err := codec.Sniff(file.Data, file.MimeType)
	if err != nil {
		return nil, common.NewProcessingError(opCompress, file.Name, err)
	}

	var (
		subject solver.Subject
		target  = transform.EncodeParameters{Format: format, Lossless: format.Lossless()}
		w, h    int
	)
	if format == transform.FormatPDF {
		if file.Size() <= budget {
			if _, err := p.pdfs.PageCount(file.Data); err != nil {
				return nil, common.NewProcessingError(opCompress, file.Name, err)
			}
			return []transform.JobResult{keepOriginal(file, format, 0, 0)}, nil
		}
		pages, err := p.pdfs.Rasterize(file.Data, nil, p.cfg.RasterDPI)
		if err != nil {
			return nil, common.NewProcessingError(opCompress, file.Name, err)
		}
		subject = solver.NewPageSubject(pages, p.pdfs)
	} else {
		asset, err := p.decodeImage(ctx, opCompress, file)
		if err != nil {
			return nil, err
		}
		w, h = asset.Width(), asset.Height()
		if file.Size() <= budget {
			return []transform.JobResult{keepOriginal(file, format, w, h)}, nil
		}
		subject = solver.NewImageSubject(asset.Image, p.images)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	track(transform.StateSolving)

	sol, err := p.solver.Solve(ctx, subject, target, budget)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, common.NewProcessingError(opCompress, file.Name, err)
	}
	p.metrics.ObserveSolve(sol.Probes, sol.Rounds)

	track(transform.StateEncoding)

	if !sol.Fits {
		p.logger.Warn("Size budget unreachable", "file", file.Name, "budget", budget, "smallest", sol.Size())
		if sol.Size() >= file.Size() {
			return []transform.JobResult{keepOriginal(file, format, w, h, transform.WarnBudgetUnreachable)}, nil
		}
	}

	if format == transform.FormatPDF {
		w, h = 0, 0
	} else {
		w, h = sol.Params.Width, sol.Params.Height
	}
	result := output(file, file.Name, sol.Params, sol.Data, w, h)
	if !sol.Fits {
		result.Warnings = append(result.Warnings, transform.WarnBudgetUnreachable)
	}

	p.logger.Info("Compressed file",
		"file", file.Name,
		"original_size", file.Size(),
		"final_size", result.FinalSize,
		"quality", sol.Params.Quality,
		"rounds", sol.Rounds,
		"probes", sol.Probes)
	return []transform.JobResult{result}, nil
}
