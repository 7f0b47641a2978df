package statistics

import "time"

// SessionStats aggregates every batch recorded by a store.
type SessionStats struct {
	TotalBatches   int64 `json:"total_batches"`
	FilesProcessed int64 `json:"files_processed"`
	FilesFailed    int64 `json:"files_failed"`
	BytesIn        int64 `json:"bytes_in"`
	BytesOut       int64 `json:"bytes_out"`
	DataSaved      int64 `json:"data_saved"`
}

// BatchSummary is the persisted digest of one batch.
type BatchSummary struct {
	BatchID    string        `json:"batch_id"`
	Operation  string        `json:"operation"`
	Succeeded  int           `json:"succeeded"`
	Failed     int           `json:"failed"`
	Cancelled  int           `json:"cancelled"`
	BytesIn    int64         `json:"bytes_in"`
	BytesOut   int64         `json:"bytes_out"`
	Duration   time.Duration `json:"duration"`
	FinishedAt time.Time     `json:"finished_at"`
}

// Service defines the interface for statistics operations
type Service interface {
	Record(summary BatchSummary) error
	Totals() (*SessionStats, error)
	Recent(limit int) ([]BatchSummary, error)
}
