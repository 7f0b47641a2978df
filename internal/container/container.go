package container

import (
	"fmt"
	"log/slog"

	"fileforge/internal/codec"
	"fileforge/internal/concurrency"
	"fileforge/internal/config"
	"fileforge/internal/database"
	statisticsDomain "fileforge/internal/domain/statistics"
	"fileforge/internal/metrics"
	"fileforge/internal/packager"
	"fileforge/internal/pipeline"
	"fileforge/internal/services"

	"github.com/prometheus/client_golang/prometheus"
)

// Container holds all dependencies for the engine
type Container struct {
	config  *config.Config
	db      *database.Database
	logger  *slog.Logger
	metrics *metrics.Metrics

	// Services
	images       *codec.ImageCodec
	pdfs         *codec.PDFCodec
	requests     *services.RequestService
	pipeline     *pipeline.Pipeline
	orchestrator *concurrency.Orchestrator
	packager     *packager.Packager
	batches      *BatchService
}

// New creates a new dependency injection container. A nil registerer
// disables metrics.
func New(cfg *config.Config, reg prometheus.Registerer) (*Container, error) {
	c := &Container{
		config: cfg,
		logger: cfg.Logger,
	}

	if reg != nil {
		m, err := metrics.New(reg)
		if err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
		c.metrics = m
	}

	db, err := database.NewDatabase(cfg.StatsDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open statistics database: %w", err)
	}
	c.db = db

	c.initServices()
	return c, nil
}

// initServices initializes all services with their dependencies
func (c *Container) initServices() {
	c.images = codec.NewImageCodec(c.logger)
	c.pdfs = codec.NewPDFCodec(c.logger)
	c.requests = services.NewRequestService(c.config, c.pdfs)
	c.pipeline = pipeline.New(c.config, c.images, c.pdfs, c.metrics)
	c.orchestrator = concurrency.NewOrchestrator(c.config.MaxConcurrency, c.metrics, c.logger)
	c.packager = packager.New(c.logger)

	c.batches = &BatchService{
		requests:     c.requests,
		pipeline:     c.pipeline,
		orchestrator: c.orchestrator,
		packager:     c.packager,
		stats:        c.db,
		metrics:      c.metrics,
		logger:       c.logger,
	}
}

// GetBatchService returns the batch service
func (c *Container) GetBatchService() *BatchService {
	return c.batches
}

// GetRequestService returns the request service
func (c *Container) GetRequestService() *services.RequestService {
	return c.requests
}

// GetStatisticsService returns the statistics service
func (c *Container) GetStatisticsService() statisticsDomain.Service {
	return c.db
}

// GetPackager returns the archive packager
func (c *Container) GetPackager() *packager.Packager {
	return c.packager
}

// GetConfig returns the engine configuration
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// Close releases the statistics database.
func (c *Container) Close() error {
	return c.db.Close()
}
