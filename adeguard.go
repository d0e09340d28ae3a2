// Copyright 2025 ADEGuard Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package adeguard

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/ghanashyam9348/adeguard/ai"
	"github.com/ghanashyam9348/adeguard/ai/openai"
	"github.com/ghanashyam9348/adeguard/cluster"
	"github.com/ghanashyam9348/adeguard/core"
	"github.com/ghanashyam9348/adeguard/pipeline"
	"github.com/ghanashyam9348/adeguard/registry"
	"github.com/ghanashyam9348/adeguard/storage"
	"github.com/ghanashyam9348/adeguard/storage/badger"
)

// Engine is the top-level entry point: it owns the provider, the capability
// registry, the persisted similarity index, and the batch scheduler.
type Engine struct {
	backend   *badger.Backend
	indexRepo storage.IndexRepository
	provider  ai.Provider
	registry  *registry.Registry
	index     *cluster.SimilarityIndex
	scheduler *pipeline.BatchScheduler
	cron      *cron.Cron
	logger    *slog.Logger

	orchestratorOpts []pipeline.OrchestratorOption
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig          *ai.Config
	provider          ai.Provider
	poolSize          int
	reclusterSchedule string
	orchestratorOpts  []pipeline.OrchestratorOption
}

// WithAIConfig sets the provider configuration used when no provider is
// injected.
func WithAIConfig(config *ai.Config) EngineOption {
	return func(o *engineOptions) {
		o.aiConfig = config
	}
}

// WithProvider injects a ready-made provider (tests use the mock provider
// here). Overrides WithAIConfig.
func WithProvider(provider ai.Provider) EngineOption {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// WithBatchPoolSize sets the batch scheduler's worker pool size.
func WithBatchPoolSize(size int) EngineOption {
	return func(o *engineOptions) {
		o.poolSize = size
	}
}

// WithReclusterSchedule enables a periodic full recluster on a cron
// expression (e.g. "0 3 * * *" for 03:00 daily).
func WithReclusterSchedule(spec string) EngineOption {
	return func(o *engineOptions) {
		o.reclusterSchedule = spec
	}
}

// WithPipelineOptions passes extra options to every orchestrator run
// (stage timeout, explanation method, seed).
func WithPipelineOptions(opts ...pipeline.OrchestratorOption) EngineOption {
	return func(o *engineOptions) {
		o.orchestratorOpts = append(o.orchestratorOpts, opts...)
	}
}

// New opens the engine over a BadgerDB directory, restores the similarity
// index, and loads every capability. Capability load failures are logged
// and left degraded; they do not fail construction.
func New(ctx context.Context, dbPath string, opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	logger := slog.Default().With("component", "engine")

	backend, err := badger.OpenBackend(dbPath, false)
	if err != nil {
		return nil, err
	}

	indexRepo, err := badger.NewIndexRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			indexRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	reg, err := registry.New(provider)
	if err != nil {
		provider.Close()
		indexRepo.Close()
		backend.Close()
		return nil, err
	}
	if err := reg.LoadAll(ctx); err != nil {
		logger.Warn("some capabilities failed to load", "err", err)
	}

	index, err := cluster.NewSimilarityIndex(cluster.WithRepository(indexRepo))
	if err != nil {
		provider.Close()
		indexRepo.Close()
		backend.Close()
		return nil, err
	}
	if err := index.Load(ctx); err != nil {
		provider.Close()
		indexRepo.Close()
		backend.Close()
		return nil, err
	}

	orchestratorOpts := append([]pipeline.OrchestratorOption{pipeline.WithIndex(index)}, options.orchestratorOpts...)
	orchestrator, err := pipeline.NewOrchestrator(reg, orchestratorOpts...)
	if err != nil {
		provider.Close()
		indexRepo.Close()
		backend.Close()
		return nil, err
	}

	batchOpts := []pipeline.BatchOption{}
	if options.poolSize > 0 {
		batchOpts = append(batchOpts, pipeline.WithPoolSize(options.poolSize))
	}
	scheduler, err := pipeline.NewBatchScheduler(orchestrator, batchOpts...)
	if err != nil {
		provider.Close()
		indexRepo.Close()
		backend.Close()
		return nil, err
	}

	engine := &Engine{
		backend:          backend,
		indexRepo:        indexRepo,
		provider:         provider,
		registry:         reg,
		index:            index,
		scheduler:        scheduler,
		logger:           logger,
		orchestratorOpts: orchestratorOpts,
	}

	if options.reclusterSchedule != "" {
		engine.cron = cron.New()
		_, err := engine.cron.AddFunc(options.reclusterSchedule, func() {
			if err := engine.TriggerRecluster(context.Background()); err != nil {
				logger.Error("scheduled recluster failed", "err", err)
			}
		})
		if err != nil {
			engine.Close()
			return nil, err
		}
		engine.cron.Start()
		logger.Info("recluster schedule active", "spec", options.reclusterSchedule)
	}

	return engine, nil
}

// Submit runs one report through the pipeline. Validation failures surface
// as the returned error; everything else degrades into the result.
func (e *Engine) Submit(ctx context.Context, report core.Report) (*core.PipelineResult, error) {
	orchestrator, err := pipeline.NewOrchestrator(e.registry, e.orchestratorOpts...)
	if err != nil {
		return nil, err
	}
	return orchestrator.Run(ctx, report)
}

// SubmitBatch runs a batch of reports through the scheduler.
func (e *Engine) SubmitBatch(ctx context.Context, reports []core.Report) (*core.BatchResult, error) {
	return e.scheduler.Submit(ctx, reports)
}

// CapabilityStatus snapshots every capability's lifecycle state.
func (e *Engine) CapabilityStatus() map[core.Capability]core.ModelStatus {
	return e.registry.StatusAll()
}

// TriggerRecluster runs a full density pass over the similarity index.
func (e *Engine) TriggerRecluster(ctx context.Context) error {
	return e.index.Recluster(ctx)
}

// IndexStats reports embedding, cluster, and pending-noise counts.
func (e *Engine) IndexStats() (embeddings, clusters, pending int) {
	return e.index.Stats()
}

// Close stops the recluster schedule, unloads the registry, and closes
// storage.
func (e *Engine) Close() error {
	if e.cron != nil {
		e.cron.Stop()
	}

	e.scheduler.Release()
	e.registry.UnloadAll()

	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing provider", "err", err)
	}
	if err := e.indexRepo.Close(); err != nil {
		e.logger.Error("error closing index repository", "err", err)
		return err
	}
	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}
