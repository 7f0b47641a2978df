package concurrency

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fileforge/internal/common"
	"fileforge/internal/domain/transform"
	"fileforge/internal/metrics"

	"github.com/panjf2000/ants/v2"
)

// Orchestrator runs the tasks of a batch on a bounded pool and reassembles
// their results in input order.
type Orchestrator struct {
	maxConcurrency int
	metrics        *metrics.Metrics
	logger         *slog.Logger
}

// NewOrchestrator creates a new orchestrator. maxConcurrency is capped at
// common.MaxConcurrencyLimit.
func NewOrchestrator(maxConcurrency int, m *metrics.Metrics, logger *slog.Logger) *Orchestrator {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	if maxConcurrency > common.MaxConcurrencyLimit {
		maxConcurrency = common.MaxConcurrencyLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{maxConcurrency: maxConcurrency, metrics: m, logger: logger}
}

// Run executes tasks and returns a manifest holding every result. A job
// that fails yields one Failed result; a job that is interrupted or never
// started once ctx is done yields one Cancelled result. progress and
// observe may be nil.
func (o *Orchestrator) Run(ctx context.Context, op transform.Operation, tasks []transform.Task, progress ProgressFunc, observe StateFunc) (*transform.BatchManifest, error) {
	manifest := &transform.BatchManifest{
		BatchID:   common.GenerateUUID(),
		Operation: op,
		StartedAt: time.Now(),
	}
	if len(tasks) == 0 {
		manifest.FinishedAt = manifest.StartedAt
		return manifest, nil
	}

	size := min(o.maxConcurrency, len(tasks))
	pool, err := ants.NewPool(size)
	if err != nil {
		o.logger.Error("Failed to create worker pool", "error", err)
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	table := newJobTable(tasks, observe)
	done := make(chan completion, len(tasks))
	total := len(tasks)

	// Submit blocks while the pool is saturated, so it runs beside the
	// collector to keep progress flowing.
	go func() {
		for i, task := range tasks {
			err := pool.Submit(func() {
				done <- completion{index: i, name: task.Name, results: o.runTask(ctx, i, task, table)}
			})
			if err != nil {
				o.logger.Error("Failed to submit task", "file", task.Name, "error", err)
				table.set(i, transform.StateFailed)
				done <- completion{index: i, name: task.Name, results: []transform.JobResult{failed(task, err)}}
			}
		}
	}()

	// Single collector: it alone writes slots and reports progress.
	slots := make([][]transform.JobResult, total)
	for completed := 1; completed <= total; completed++ {
		c := <-done
		slots[c.index] = c.results
		if progress != nil {
			progress(Progress{Completed: completed, Total: total, CurrentFile: c.name})
		}
	}

	for i, results := range slots {
		for _, r := range results {
			r.JobIndex = i
			manifest.Results = append(manifest.Results, r)
		}
	}
	manifest.Jobs = table.snapshot()
	manifest.Tally()
	manifest.FinishedAt = time.Now()

	o.logger.Info("Batch finished",
		"batch_id", manifest.BatchID,
		"operation", op,
		"jobs", total,
		"succeeded", manifest.Succeeded,
		"failed", manifest.Failed,
		"cancelled", manifest.Cancelled,
		"duration", manifest.FinishedAt.Sub(manifest.StartedAt))
	return manifest, nil
}

// runTask executes one task and converts its outcome into results.
func (o *Orchestrator) runTask(ctx context.Context, i int, task transform.Task, table *jobTable) (results []transform.JobResult) {
	select {
	case <-ctx.Done():
		o.logger.Info("Job cancelled before start", "file", task.Name)
		table.set(i, transform.StateCancelled)
		return []transform.JobResult{cancelled(task)}
	default:
	}

	o.metrics.JobStarted()
	defer o.metrics.JobFinished()

	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("Job panicked", "file", task.Name, "panic", r)
			table.set(i, transform.StateFailed)
			results = []transform.JobResult{failed(task, fmt.Errorf("%w: %v", common.ErrEncode, r))}
		}
	}()

	out, err := task.Run(ctx, func(state transform.JobState) { table.set(i, state) })
	switch {
	case err == nil:
		table.set(i, transform.StateDone)
		return out
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		o.logger.Info("Job cancelled", "file", task.Name)
		table.set(i, transform.StateCancelled)
		return []transform.JobResult{cancelled(task)}
	default:
		o.logger.Error("Error processing file", "file", task.Name, "error", err)
		table.set(i, transform.StateFailed)
		return []transform.JobResult{failed(task, err)}
	}
}

func failed(task transform.Task, err error) transform.JobResult {
	return transform.JobResult{
		SourceName:   task.Name,
		Status:       transform.StatusFailed,
		OriginalSize: task.OriginalSize,
		ErrorKind:    transform.KindOf(err),
		Error:        common.UserMessage(err),
	}
}

func cancelled(task transform.Task) transform.JobResult {
	return transform.JobResult{
		SourceName:   task.Name,
		Status:       transform.StatusCancelled,
		OriginalSize: task.OriginalSize,
		ErrorKind:    transform.KindCancelled,
		Error:        "cancelled",
	}
}
