// Package fileforge compresses, converts, merges and splits images and PDFs
// entirely in memory.
//
// An Engine runs one request at a time per call to Run; calls may overlap.
// Files of a batch are processed on a bounded worker pool, results come
// back in input order, and a failing file never aborts its siblings.
package fileforge

import (
	"context"
	"fmt"

	"fileforge/internal/config"
	"fileforge/internal/container"

	"github.com/prometheus/client_golang/prometheus"
)

// Engine is the entry point of the library.
type Engine struct {
	config    *config.Config
	container *container.Container
}

type options struct {
	config     *config.Config
	registerer prometheus.Registerer
}

// Option configures New.
type Option func(*options)

// WithConfig replaces the configuration loaded from the environment.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) { o.config = cfg }
}

// WithRegisterer exposes the engine metrics through reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// New builds an engine. Without options the configuration comes from
// FILEFORGE_* environment variables and metrics go to a private registry.
func New(opts ...Option) (*Engine, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.config == nil {
		o.config = config.New()
	}
	if err := o.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if o.registerer == nil {
		o.registerer = prometheus.NewRegistry()
	}

	c, err := container.New(o.config, o.registerer)
	if err != nil {
		return nil, err
	}
	return &Engine{config: o.config, container: c}, nil
}

// Run validates and executes req. A request that fails validation returns
// an error before any file is touched. Otherwise the manifest holds one or
// more results per input job, including failed and cancelled ones.
func (e *Engine) Run(ctx context.Context, req Request, opts RunOptions) (*BatchManifest, error) {
	return e.container.GetBatchService().Run(ctx, req, opts)
}

// CompressForPlatform fits files under a named platform's attachment limit.
func (e *Engine) CompressForPlatform(ctx context.Context, platform string, files []InputFile, opts RunOptions) (*BatchManifest, error) {
	req, err := e.container.GetRequestService().BuildCompressForPlatform(platform, files)
	if err != nil {
		return nil, err
	}
	return e.Run(ctx, req, opts)
}

// GenerateIcons renders file for the named platforms using preset sizes.
func (e *Engine) GenerateIcons(ctx context.Context, file InputFile, opts RunOptions, platforms ...string) (*BatchManifest, error) {
	req, err := e.container.GetRequestService().BuildIconSet(file, platforms...)
	if err != nil {
		return nil, err
	}
	return e.Run(ctx, req, opts)
}

// Pack bundles the Success results into a ZIP archive and returns it with
// the entry names.
func (e *Engine) Pack(results []JobResult) ([]byte, []string, error) {
	return e.container.GetPackager().Pack(results)
}

// PlatformLimit describes one attachment limit.
type PlatformLimit struct {
	Name     string `json:"name"`
	MaxBytes int64  `json:"max_bytes"`
}

// Platforms lists the known attachment limits, alphabetically.
func (e *Engine) Platforms() []PlatformLimit {
	names := e.config.Presets.PlatformNames()
	out := make([]PlatformLimit, 0, len(names))
	for _, name := range names {
		out = append(out, PlatformLimit{Name: name, MaxBytes: e.config.Presets.Platforms[name]})
	}
	return out
}

// Stats returns totals across every batch run by this engine.
func (e *Engine) Stats() (*SessionStats, error) {
	return e.container.GetStatisticsService().Totals()
}

// RecentBatches returns up to n batch summaries, newest first.
func (e *Engine) RecentBatches(n int) ([]BatchSummary, error) {
	return e.container.GetStatisticsService().Recent(n)
}

// Close releases the statistics store.
func (e *Engine) Close() error {
	return e.container.Close()
}
