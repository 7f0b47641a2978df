package concurrency

import (
	"sync"

	"fileforge/internal/domain/transform"
)

// Progress is delivered once per finished job. Completed never decreases.
type Progress struct {
	Completed   int    `json:"completed"`
	Total       int    `json:"total"`
	CurrentFile string `json:"current_file"`
}

// ProgressFunc receives progress updates on a single goroutine.
type ProgressFunc func(p Progress)

// StateFunc observes job state transitions. It may be called from worker
// goroutines concurrently.
type StateFunc func(record transform.JobRecord)

// completion carries one finished job from a worker to the collector.
type completion struct {
	index   int
	name    string
	results []transform.JobResult
}

// jobTable holds the last observed state of every job.
type jobTable struct {
	mu      sync.Mutex
	records []transform.JobRecord
	observe StateFunc
}

func newJobTable(tasks []transform.Task, observe StateFunc) *jobTable {
	records := make([]transform.JobRecord, len(tasks))
	for i, t := range tasks {
		records[i] = transform.JobRecord{Index: i, Name: t.Name, State: transform.StatePending}
	}
	return &jobTable{records: records, observe: observe}
}

// set moves job i to state. Transitions out of a terminal state are ignored.
func (t *jobTable) set(i int, state transform.JobState) {
	t.mu.Lock()
	if t.records[i].State.Terminal() {
		t.mu.Unlock()
		return
	}
	t.records[i].State = state
	record := t.records[i]
	t.mu.Unlock()

	if t.observe != nil {
		t.observe(record)
	}
}

func (t *jobTable) snapshot() []transform.JobRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]transform.JobRecord(nil), t.records...)
}
