package transform

import (
	"slices"
	"time"
)

// Status is the terminal state of one output.
type Status string

const (
	StatusSuccess   Status = "success"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Warning flags a Success result that deviated from the request.
type Warning string

const (
	WarnTransparencyFlattened Warning = "transparency_flattened"
	WarnUpscale               Warning = "upscale"
	WarnBudgetUnreachable     Warning = "budget_unreachable"
	WarnKeptOriginal          Warning = "kept_original"
)

// JobResult describes one produced artifact, or the failure of the job that
// should have produced it. Output is set only when Status is StatusSuccess.
type JobResult struct {
	JobIndex     int               `json:"job_index"`
	SourceName   string            `json:"source_name"`
	Status       Status            `json:"status"`
	OutputName   string            `json:"output_name,omitempty"`
	MimeType     string            `json:"mime_type,omitempty"`
	Output       []byte            `json:"-"`
	OriginalSize int64             `json:"original_size"`
	FinalSize    int64             `json:"final_size"`
	Width        int               `json:"width,omitempty"`
	Height       int               `json:"height,omitempty"`
	Params       *EncodeParameters `json:"params,omitempty"`
	Warnings     []Warning         `json:"warnings,omitempty"`
	ErrorKind    ErrorKind         `json:"error_kind,omitempty"`
	Error        string            `json:"error,omitempty"`
}

// HasWarning reports whether w was recorded on the result.
func (r JobResult) HasWarning(w Warning) bool {
	return slices.Contains(r.Warnings, w)
}

// JobState is the lifecycle of a single job.
type JobState string

const (
	StatePending   JobState = "pending"
	StateDecoding  JobState = "decoding"
	StateSolving   JobState = "solving"
	StateEncoding  JobState = "encoding"
	StateDone      JobState = "done"
	StateFailed    JobState = "failed"
	StateCancelled JobState = "cancelled"
)

// Terminal reports whether no further transitions are possible.
func (s JobState) Terminal() bool {
	return s == StateDone || s == StateFailed || s == StateCancelled
}

// JobRecord is the last observed state of one job.
type JobRecord struct {
	Index int      `json:"index"`
	Name  string   `json:"name"`
	State JobState `json:"state"`
}

// Outcome summarizes a finished batch.
type Outcome string

const (
	OutcomeAllSucceeded Outcome = "all_succeeded"
	OutcomePartial      Outcome = "partial_success"
	OutcomeAllFailed    Outcome = "all_failed"
	OutcomeCancelled    Outcome = "cancelled"
)

// BatchManifest collects every JobResult of a batch, in input order.
type BatchManifest struct {
	BatchID      string      `json:"batch_id"`
	Operation    Operation   `json:"operation"`
	Results      []JobResult `json:"results"`
	Jobs         []JobRecord `json:"jobs"`
	Succeeded    int         `json:"succeeded"`
	Failed       int         `json:"failed"`
	Cancelled    int         `json:"cancelled"`
	StartedAt    time.Time   `json:"started_at"`
	FinishedAt   time.Time   `json:"finished_at"`
	ArchiveName  string      `json:"archive_name,omitempty"`
	Archive      []byte      `json:"-"`
	ArchiveFiles []string    `json:"archive_files,omitempty"`
}

// Total returns the number of results.
func (m *BatchManifest) Total() int {
	return len(m.Results)
}

// Tally recomputes the status counters from Results.
func (m *BatchManifest) Tally() {
	m.Succeeded, m.Failed, m.Cancelled = 0, 0, 0
	for _, r := range m.Results {
		switch r.Status {
		case StatusSuccess:
			m.Succeeded++
		case StatusFailed:
			m.Failed++
		case StatusCancelled:
			m.Cancelled++
		}
	}
}

// Outcome classifies the batch.
func (m *BatchManifest) Outcome() Outcome {
	switch {
	case m.Cancelled > 0:
		return OutcomeCancelled
	case m.Failed == 0 && m.Succeeded > 0:
		return OutcomeAllSucceeded
	case m.Succeeded == 0:
		return OutcomeAllFailed
	}
	return OutcomePartial
}

// Successful returns the Success results in order.
func (m *BatchManifest) Successful() []JobResult {
	var out []JobResult
	for _, r := range m.Results {
		if r.Status == StatusSuccess {
			out = append(out, r)
		}
	}
	return out
}

// BytesIn sums the source sizes of successful results.
func (m *BatchManifest) BytesIn() int64 {
	var n int64
	for _, r := range m.Successful() {
		n += r.OriginalSize
	}
	return n
}

// BytesOut sums the output sizes of successful results.
func (m *BatchManifest) BytesOut() int64 {
	var n int64
	for _, r := range m.Successful() {
		n += r.FinalSize
	}
	return n
}
