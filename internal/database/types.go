package database

import (
	"time"

	"fileforge/internal/domain/statistics"
)

// BatchRecord database model
type BatchRecord struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	BatchID    string    `gorm:"uniqueIndex;size:36" json:"batch_id"`
	Operation  string    `gorm:"index;size:32" json:"operation"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
	Cancelled  int       `json:"cancelled"`
	BytesIn    int64     `json:"bytes_in"`
	BytesOut   int64     `json:"bytes_out"`
	DurationMs int64     `json:"duration_ms"`
	FinishedAt time.Time `gorm:"index" json:"finished_at"`
	CreatedAt  time.Time `json:"created_at"`
}

func recordFromSummary(s statistics.BatchSummary) BatchRecord {
	return BatchRecord{
		BatchID:    s.BatchID,
		Operation:  s.Operation,
		Succeeded:  s.Succeeded,
		Failed:     s.Failed,
		Cancelled:  s.Cancelled,
		BytesIn:    s.BytesIn,
		BytesOut:   s.BytesOut,
		DurationMs: s.Duration.Milliseconds(),
		FinishedAt: s.FinishedAt,
	}
}

// Summary converts the row back into its domain form.
func (r BatchRecord) Summary() statistics.BatchSummary {
	return statistics.BatchSummary{
		BatchID:    r.BatchID,
		Operation:  r.Operation,
		Succeeded:  r.Succeeded,
		Failed:     r.Failed,
		Cancelled:  r.Cancelled,
		BytesIn:    r.BytesIn,
		BytesOut:   r.BytesOut,
		Duration:   time.Duration(r.DurationMs) * time.Millisecond,
		FinishedAt: r.FinishedAt,
	}
}
