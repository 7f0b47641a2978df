package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"fileforge/internal/codec"
	"fileforge/internal/common"
	"fileforge/internal/domain/transform"

	"golang.org/x/sync/errgroup"
)

const (
	opCompose = "compose"
	opSplit   = "split"
	opExtract = "extract"
)

// compose merges files, in order, into one PDF. Images become one page each;
// PDFs contribute all of their pages. Any unreadable input fails the job.
func (p *Pipeline) compose(ctx context.Context, files []transform.InputFile, name string, track transform.TrackFunc) ([]transform.JobResult, error) {
	track(transform.StateDecoding)

	perFile := make([][]transform.PageImage, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.MaxConcurrency)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			pages, err := p.pagesOf(gctx, f)
			if err != nil {
				return err
			}
			perFile[i] = pages
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}

	var pages []transform.PageImage
	var size int64
	for i, f := range files {
		pages = append(pages, perFile[i]...)
		size += f.Size()
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	track(transform.StateEncoding)

	data, err := p.pdfs.Compose(pages, p.cfg.ConvertQuality)
	if err != nil {
		return nil, common.NewProcessingError(opCompose, name, err)
	}

	src := transform.InputFile{Name: name}
	result := output(src, name, transform.EncodeParameters{Format: transform.FormatPDF, Quality: p.cfg.ConvertQuality}, data, 0, 0)
	result.OriginalSize = size

	p.logger.Info("Composed PDF", "output", name, "inputs", len(files), "pages", len(pages), "final_size", result.FinalSize)
	return []transform.JobResult{result}, nil
}

// pagesOf turns one compose input into pages.
func (p *Pipeline) pagesOf(ctx context.Context, file transform.InputFile) ([]transform.PageImage, error) {
	format, err := codec.Sniff(file.Data, file.MimeType)
	if err != nil {
		return nil, common.NewProcessingError(opCompose, file.Name, err)
	}
	if format == transform.FormatPDF {
		pages, err := p.pdfs.Rasterize(file.Data, nil, p.cfg.RasterDPI)
		if err != nil {
			return nil, common.NewProcessingError(opCompose, file.Name, err)
		}
		return pages, nil
	}
	asset, err := p.decodeImage(ctx, opCompose, file)
	if err != nil {
		return nil, err
	}
	return []transform.PageImage{p.pageOf(asset)}, nil
}

// split copies the selected pages into a new PDF.
func (p *Pipeline) split(ctx context.Context, file transform.InputFile, selection []int, track transform.TrackFunc) ([]transform.JobResult, error) {
	track(transform.StateDecoding)

	pages, err := p.pdfs.Rasterize(file.Data, selection, p.cfg.RasterDPI)
	if err != nil {
		return nil, common.NewProcessingError(opSplit, file.Name, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	track(transform.StateEncoding)

	data, err := p.pdfs.Compose(pages, p.cfg.ConvertQuality)
	if err != nil {
		return nil, common.NewProcessingError(opSplit, file.Name, err)
	}

	name := common.BaseName(file.Name) + "-split.pdf"
	result := output(file, name, transform.EncodeParameters{Format: transform.FormatPDF, Quality: p.cfg.ConvertQuality}, data, 0, 0)

	p.logger.Info("Split PDF", "file", file.Name, "pages", len(pages), "final_size", result.FinalSize)
	return []transform.JobResult{result}, nil
}

// pageEntry is one line of the extraction manifest.
type pageEntry struct {
	Page   int    `json:"page"`
	File   string `json:"file"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// extract rasterizes the selected pages into standalone images plus a JSON
// manifest naming them.
func (p *Pipeline) extract(ctx context.Context, file transform.InputFile, selection []int, format transform.Format, track transform.TrackFunc) ([]transform.JobResult, error) {
	track(transform.StateDecoding)

	if format == "" {
		format = transform.FormatPNG
	}
	if len(selection) == 0 {
		n, err := p.pdfs.PageCount(file.Data)
		if err != nil {
			return nil, common.NewProcessingError(opExtract, file.Name, err)
		}
		selection = make([]int, n)
		for i := range selection {
			selection[i] = i + 1
		}
	}

	pages, err := p.pdfs.Rasterize(file.Data, selection, p.cfg.RasterDPI)
	if err != nil {
		return nil, common.NewProcessingError(opExtract, file.Name, err)
	}

	track(transform.StateEncoding)

	base := common.BaseName(file.Name)
	params := transform.EncodeParameters{Format: format, Quality: p.cfg.ConvertQuality, Lossless: format.Lossless()}
	results := make([]transform.JobResult, 0, len(pages)+1)
	entries := make([]pageEntry, 0, len(pages))
	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := p.images.Encode(page.Image, params)
		if err != nil {
			return nil, common.NewProcessingError(opExtract, file.Name, err)
		}
		b := page.Image.Bounds()
		name := fmt.Sprintf("%s-page-%d%s", base, selection[i], format.Extension())
		results = append(results, output(file, name, params, data, b.Dx(), b.Dy()))
		entries = append(entries, pageEntry{Page: selection[i], File: name, Width: b.Dx(), Height: b.Dy()})
	}

	manifest, err := json.MarshalIndent(map[string]any{
		"source": file.Name,
		"dpi":    p.cfg.RasterDPI,
		"pages":  entries,
	}, "", "  ")
	if err != nil {
		return nil, common.NewProcessingError(opExtract, file.Name, err)
	}
	results = append(results, transform.JobResult{
		SourceName:   file.Name,
		Status:       transform.StatusSuccess,
		OutputName:   base + "-pages.json",
		MimeType:     "application/json",
		Output:       manifest,
		OriginalSize: file.Size(),
		FinalSize:    int64(len(manifest)),
	})

	p.logger.Info("Extracted PDF pages", "file", file.Name, "pages", len(pages), "format", format)
	return results, nil
}
