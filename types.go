package fileforge

import (
	"fileforge/internal/concurrency"
	"fileforge/internal/container"
	"fileforge/internal/domain/statistics"
	"fileforge/internal/domain/transform"
)

type (
	InputFile        = transform.InputFile
	Format           = transform.Format
	Platform         = transform.Platform
	QualityPreset    = transform.QualityPreset
	Request          = transform.OperationRequest
	CompressForLimit = transform.CompressForLimit
	ConvertFormat    = transform.ConvertFormat
	PdfCompose       = transform.PdfCompose
	PdfSplit         = transform.PdfSplit
	PdfExtractImages = transform.PdfExtractImages
	GenerateIconSet  = transform.GenerateIconSet
	OptimizeForWeb   = transform.OptimizeForWeb
	JobResult        = transform.JobResult
	JobRecord        = transform.JobRecord
	JobState         = transform.JobState
	BatchManifest    = transform.BatchManifest
	Status           = transform.Status
	Warning          = transform.Warning
	ErrorKind        = transform.ErrorKind
	Outcome          = transform.Outcome
	Progress         = concurrency.Progress
	RunOptions       = container.RunOptions
	SessionStats     = statistics.SessionStats
	BatchSummary     = statistics.BatchSummary
)

const (
	FormatJPEG = transform.FormatJPEG
	FormatPNG  = transform.FormatPNG
	FormatWebP = transform.FormatWebP
	FormatPDF  = transform.FormatPDF

	PlatformWeb     = transform.PlatformWeb
	PlatformIOS     = transform.PlatformIOS
	PlatformAndroid = transform.PlatformAndroid

	PresetSpeed    = transform.PresetSpeed
	PresetBalanced = transform.PresetBalanced
	PresetQuality  = transform.PresetQuality

	StatusSuccess   = transform.StatusSuccess
	StatusFailed    = transform.StatusFailed
	StatusCancelled = transform.StatusCancelled

	WarnTransparencyFlattened = transform.WarnTransparencyFlattened
	WarnUpscale               = transform.WarnUpscale
	WarnBudgetUnreachable     = transform.WarnBudgetUnreachable
	WarnKeptOriginal          = transform.WarnKeptOriginal

	KindUnsupportedFormat    = transform.KindUnsupportedFormat
	KindCorruptData          = transform.KindCorruptData
	KindEncodeError          = transform.KindEncodeError
	KindInvalidPageSelection = transform.KindInvalidPageSelection
	KindCancelled            = transform.KindCancelled
	KindInvalidRequest       = transform.KindInvalidRequest

	OutcomeAllSucceeded = transform.OutcomeAllSucceeded
	OutcomePartial      = transform.OutcomePartial
	OutcomeAllFailed    = transform.OutcomeAllFailed
	OutcomeCancelled    = transform.OutcomeCancelled

	StatePending   = transform.StatePending
	StateDecoding  = transform.StateDecoding
	StateSolving   = transform.StateSolving
	StateEncoding  = transform.StateEncoding
	StateDone      = transform.StateDone
	StateFailed    = transform.StateFailed
	StateCancelled = transform.StateCancelled
)

// ParseFormat maps a name or extension such as "jpg" or ".webp" to a Format.
func ParseFormat(s string) (Format, bool) {
	return transform.ParseFormat(s)
}
