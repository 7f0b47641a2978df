package services

import (
	"fmt"
	"log/slog"
	"sort"

	"fileforge/internal/common"
	"fileforge/internal/config"
	"fileforge/internal/domain/transform"
)

// maxIconSize bounds requested icon edges.
const maxIconSize = 1024

// PageCounter reports the number of pages in a PDF.
type PageCounter interface {
	PageCount(data []byte) (int, error)
}

// RequestService validates requests and builds them from presets
type RequestService struct {
	config *config.Config
	pages  PageCounter
	logger *slog.Logger
}

// NewRequestService creates a new request service
func NewRequestService(cfg *config.Config, pages PageCounter) *RequestService {
	return &RequestService{config: cfg, pages: pages, logger: cfg.Logger}
}

// Validate rejects malformed requests before any job starts. Page
// selections are sorted and de-duplicated in place.
func (s *RequestService) Validate(req transform.OperationRequest) error {
	if req == nil {
		return common.NewRequestError("", common.ErrInvalidRequest)
	}
	if err := s.validateInputs(req.Inputs()); err != nil {
		return err
	}

	switch r := req.(type) {
	case *transform.CompressForLimit:
		if r.TargetMaxBytes <= 0 {
			return common.NewRequestError("target_max_bytes", fmt.Errorf("%w: must be positive", common.ErrInvalidRequest))
		}
	case *transform.ConvertFormat:
		if !r.TargetFormat.IsImage() {
			return common.NewRequestError("target_format", fmt.Errorf("%w: %q", common.ErrUnsupportedFormat, r.TargetFormat))
		}
	case *transform.OptimizeForWeb:
		if r.MaxWidth < 0 {
			return common.NewRequestError("max_width", fmt.Errorf("%w: must not be negative", common.ErrInvalidRequest))
		}
		if r.Format != "" && !r.Format.IsImage() {
			return common.NewRequestError("format", fmt.Errorf("%w: %q", common.ErrUnsupportedFormat, r.Format))
		}
		if r.Preset != "" {
			if _, ok := s.config.Presets.Quality[r.Preset]; !ok {
				return common.NewRequestError("preset", fmt.Errorf("%w: unknown preset %q", common.ErrInvalidRequest, r.Preset))
			}
		}
	case *transform.PdfCompose:
	case *transform.PdfSplit:
		if len(r.PageSelection) == 0 {
			return common.NewRequestError("page_selection", fmt.Errorf("%w: no pages selected", common.ErrInvalidPageSelection))
		}
		r.PageSelection = normalizePages(r.PageSelection)
		return s.validatePages(r.File, r.PageSelection)
	case *transform.PdfExtractImages:
		if r.Format != "" && !r.Format.IsImage() {
			return common.NewRequestError("format", fmt.Errorf("%w: %q", common.ErrUnsupportedFormat, r.Format))
		}
		r.PageSelection = normalizePages(r.PageSelection)
		return s.validatePages(r.File, r.PageSelection)
	case *transform.GenerateIconSet:
		for _, size := range r.Sizes {
			if size < 1 || size > maxIconSize {
				return common.NewRequestError("sizes", fmt.Errorf("%w: icon size %d outside 1..%d", common.ErrInvalidRequest, size, maxIconSize))
			}
		}
		for _, p := range r.Platforms {
			if !knownPlatform(p) {
				return common.NewRequestError("platforms", fmt.Errorf("%w: %q", common.ErrUnknownPlatform, p))
			}
		}
	default:
		return common.NewRequestError("operation", fmt.Errorf("%w: %T", common.ErrInvalidRequest, req))
	}
	return nil
}

func (s *RequestService) validateInputs(files []transform.InputFile) error {
	if len(files) == 0 {
		return common.NewRequestError("files", common.ErrNoFilesProvided)
	}
	if len(files) > s.config.MaxFileCount {
		return common.NewRequestError("files", fmt.Errorf("%w: %d > %d", common.ErrTooManyFiles, len(files), s.config.MaxFileCount))
	}

	var total int64
	for i, f := range files {
		if f.Size() == 0 {
			return common.NewRequestError(fmt.Sprintf("files[%d]", i), fmt.Errorf("%w: %s is empty", common.ErrInvalidRequest, f.Name))
		}
		if f.Size() > s.config.MaxFileSize {
			return common.NewRequestError(fmt.Sprintf("files[%d]", i), fmt.Errorf("%w: %s", common.ErrFileTooLarge, f.Name))
		}
		total += f.Size()
	}
	if total > s.config.MaxTotalSize {
		return common.NewRequestError("files", fmt.Errorf("%w: %d bytes", common.ErrBatchTooLarge, total))
	}
	return nil
}

// validatePages checks a selection against the document. Unreadable
// documents pass here and fail in their job instead.
func (s *RequestService) validatePages(file transform.InputFile, pages []int) error {
	if len(pages) == 0 {
		return nil
	}
	if pages[0] < 1 {
		return common.NewRequestError("page_selection", fmt.Errorf("%w: page %d", common.ErrInvalidPageSelection, pages[0]))
	}
	n, err := s.pages.PageCount(file.Data)
	if err != nil {
		s.logger.Debug("Skipping page validation", "file", file.Name, "error", err)
		return nil
	}
	if last := pages[len(pages)-1]; last > n {
		return common.NewRequestError("page_selection", fmt.Errorf("%w: page %d of %d", common.ErrInvalidPageSelection, last, n))
	}
	return nil
}

func normalizePages(pages []int) []int {
	if len(pages) == 0 {
		return pages
	}
	sorted := append([]int(nil), pages...)
	sort.Ints(sorted)
	out := sorted[:1]
	for _, p := range sorted[1:] {
		if p != out[len(out)-1] {
			out = append(out, p)
		}
	}
	return out
}

func knownPlatform(p transform.Platform) bool {
	for _, known := range transform.Platforms() {
		if p == known {
			return true
		}
	}
	return false
}

// BuildCompressForPlatform resolves a named attachment limit into a request.
func (s *RequestService) BuildCompressForPlatform(platform string, files []transform.InputFile) (*transform.CompressForLimit, error) {
	limit, err := s.config.Presets.PlatformLimit(platform)
	if err != nil {
		return nil, common.NewRequestError("platform", err)
	}
	return &transform.CompressForLimit{TargetMaxBytes: limit, Files: files}, nil
}

// BuildIconSet expands platform names into an icon request using preset
// sizes. No platforms selects all of them.
func (s *RequestService) BuildIconSet(file transform.InputFile, platforms ...string) (*transform.GenerateIconSet, error) {
	req := &transform.GenerateIconSet{File: file}
	for _, name := range platforms {
		p := transform.Platform(name)
		if !knownPlatform(p) {
			return nil, common.NewRequestError("platforms", fmt.Errorf("%w: %q", common.ErrUnknownPlatform, name))
		}
		req.Platforms = append(req.Platforms, p)
	}
	return req, nil
}
