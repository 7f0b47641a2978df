package container

import (
	"context"
	"log/slog"

	"fileforge/internal/common"
	"fileforge/internal/concurrency"
	statisticsDomain "fileforge/internal/domain/statistics"
	"fileforge/internal/domain/transform"
	"fileforge/internal/metrics"
	"fileforge/internal/packager"
	"fileforge/internal/pipeline"
	"fileforge/internal/services"
)

// RunOptions tune a single batch.
type RunOptions struct {
	// Package bundles every Success result into Archive.
	Package bool
	// ArchiveName names the archive; defaults to "<operation>.zip".
	ArchiveName string
	Progress    concurrency.ProgressFunc
	Observe     concurrency.StateFunc
}

// BatchService validates, plans, runs and packages one request.
type BatchService struct {
	requests     *services.RequestService
	pipeline     *pipeline.Pipeline
	orchestrator *concurrency.Orchestrator
	packager     *packager.Packager
	stats        statisticsDomain.Service
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

// Run executes req. Request-level problems return an error and no manifest;
// per-file problems are reported inside the manifest.
func (s *BatchService) Run(ctx context.Context, req transform.OperationRequest, opts RunOptions) (*transform.BatchManifest, error) {
	if err := s.requests.Validate(req); err != nil {
		s.logger.Warn("Rejected request", "error", err)
		return nil, err
	}

	tasks, err := s.pipeline.Plan(req)
	if err != nil {
		return nil, err
	}

	manifest, err := s.orchestrator.Run(ctx, req.Operation(), tasks, opts.Progress, opts.Observe)
	if err != nil {
		return nil, err
	}

	if opts.Package && manifest.Succeeded > 0 {
		archive, names, err := s.packager.Pack(manifest.Results)
		if err != nil {
			s.logger.Error("Failed to package results", "batch_id", manifest.BatchID, "error", err)
			return manifest, common.NewProcessingError("package", "", err)
		}
		manifest.Archive = archive
		manifest.ArchiveFiles = names
		manifest.ArchiveName = opts.ArchiveName
		if manifest.ArchiveName == "" {
			manifest.ArchiveName = string(manifest.Operation) + ".zip"
		}
	}

	if err := s.stats.Record(summaryOf(manifest)); err != nil {
		s.logger.Warn("Failed to record batch statistics", "batch_id", manifest.BatchID, "error", err)
	}
	s.metrics.ObserveBatch(manifest)

	return manifest, nil
}

func summaryOf(m *transform.BatchManifest) statisticsDomain.BatchSummary {
	return statisticsDomain.BatchSummary{
		BatchID:    m.BatchID,
		Operation:  string(m.Operation),
		Succeeded:  m.Succeeded,
		Failed:     m.Failed,
		Cancelled:  m.Cancelled,
		BytesIn:    m.BytesIn(),
		BytesOut:   m.BytesOut(),
		Duration:   m.FinishedAt.Sub(m.StartedAt),
		FinishedAt: m.FinishedAt,
	}
}
