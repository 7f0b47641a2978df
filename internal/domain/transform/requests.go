package transform

// Operation names a request variant.
type Operation string

const (
	OpCompressForLimit Operation = "compress_for_limit"
	OpConvertFormat    Operation = "convert_format"
	OpPdfCompose       Operation = "pdf_compose"
	OpPdfSplit         Operation = "pdf_split"
	OpPdfExtractImages Operation = "pdf_extract_images"
	OpGenerateIconSet  Operation = "generate_icon_set"
	OpOptimizeForWeb   Operation = "optimize_for_web"
)

// OperationRequest is implemented by every request variant.
type OperationRequest interface {
	Operation() Operation
	Inputs() []InputFile
}

// CompressForLimit shrinks each file to fit under TargetMaxBytes.
type CompressForLimit struct {
	TargetMaxBytes int64
	Files          []InputFile
}

func (r *CompressForLimit) Operation() Operation { return OpCompressForLimit }
func (r *CompressForLimit) Inputs() []InputFile  { return r.Files }

// ConvertFormat re-encodes each file into TargetFormat.
type ConvertFormat struct {
	TargetFormat Format
	Files        []InputFile
}

func (r *ConvertFormat) Operation() Operation { return OpConvertFormat }
func (r *ConvertFormat) Inputs() []InputFile  { return r.Files }

// PdfCompose merges images and PDFs, in order, into one PDF.
type PdfCompose struct {
	Files      []InputFile
	OutputName string
}

func (r *PdfCompose) Operation() Operation { return OpPdfCompose }
func (r *PdfCompose) Inputs() []InputFile  { return r.Files }

// PdfSplit copies the selected pages of File into a new PDF. Pages are
// 1-based.
type PdfSplit struct {
	File          InputFile
	PageSelection []int
}

func (r *PdfSplit) Operation() Operation { return OpPdfSplit }
func (r *PdfSplit) Inputs() []InputFile  { return []InputFile{r.File} }

// PdfExtractImages rasterizes the selected pages of File. An empty
// PageSelection means every page. Format defaults to PNG.
type PdfExtractImages struct {
	File          InputFile
	PageSelection []int
	Format        Format
}

func (r *PdfExtractImages) Operation() Operation { return OpPdfExtractImages }
func (r *PdfExtractImages) Inputs() []InputFile  { return []InputFile{r.File} }

// GenerateIconSet renders File at every requested size for every platform.
// Empty Sizes uses each platform's preset sizes.
type GenerateIconSet struct {
	File      InputFile
	Sizes     []int
	Platforms []Platform
	AppName   string
}

func (r *GenerateIconSet) Operation() Operation { return OpGenerateIconSet }
func (r *GenerateIconSet) Inputs() []InputFile  { return []InputFile{r.File} }

// OptimizeForWeb caps width and re-encodes at a preset quality.
type OptimizeForWeb struct {
	Files    []InputFile
	MaxWidth int
	Preset   QualityPreset
	Format   Format
}

func (r *OptimizeForWeb) Operation() Operation { return OpOptimizeForWeb }
func (r *OptimizeForWeb) Inputs() []InputFile  { return r.Files }
