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

package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ghanashyam9348/adeguard/cluster"
	"github.com/ghanashyam9348/adeguard/core"
	"github.com/ghanashyam9348/adeguard/registry"
)

// Orchestrator runs the four-stage inference pipeline for single reports.
// Extraction and severity run in sequence; the optional cluster and
// explainability stages fan out in parallel once severity is settled.
type Orchestrator struct {
	registry *registry.Registry
	index    *cluster.SimilarityIndex
	logger   *slog.Logger

	stageTimeout  time.Duration
	maxTokens     int
	minConfidence float64
	explainMethod core.ExplanationMethod
	seed          int64
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator) error

// WithIndex sets the similarity index used by the cluster stage.
// Required when submissions request clustering.
func WithIndex(index *cluster.SimilarityIndex) OrchestratorOption {
	return func(o *Orchestrator) error {
		o.index = index
		return nil
	}
}

// WithStageTimeout bounds each stage's inference calls.
// Default is DefaultStageTimeout.
func WithStageTimeout(timeout time.Duration) OrchestratorOption {
	return func(o *Orchestrator) error {
		if timeout > 0 {
			o.stageTimeout = timeout
		}
		return nil
	}
}

// WithMaxTokens caps report input length for extraction.
// Default is DefaultMaxTokens.
func WithMaxTokens(maxTokens int) OrchestratorOption {
	return func(o *Orchestrator) error {
		if maxTokens > 0 {
			o.maxTokens = maxTokens
		}
		return nil
	}
}

// WithEntityConfidence sets the minimum confidence for kept entities.
// Default is DefaultEntityConfidence.
func WithEntityConfidence(min float64) OrchestratorOption {
	return func(o *Orchestrator) error {
		o.minConfidence = min
		return nil
	}
}

// WithExplanationMethod selects the explanation method.
// Default is the perturbation method.
func WithExplanationMethod(method core.ExplanationMethod) OrchestratorOption {
	return func(o *Orchestrator) error {
		o.explainMethod = method
		return nil
	}
}

// WithSeed fixes the seed for perturbation explanations.
func WithSeed(seed int64) OrchestratorOption {
	return func(o *Orchestrator) error {
		o.seed = seed
		return nil
	}
}

// WithOrchestratorLogger sets a custom logger.
// Default is slog.Default().
func WithOrchestratorLogger(logger *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger.With("component", "orchestrator")
		return nil
	}
}

// NewOrchestrator creates an orchestrator over the registry.
func NewOrchestrator(reg *registry.Registry, opts ...OrchestratorOption) (*Orchestrator, error) {
	if reg == nil {
		return nil, ErrRegistryRequired
	}

	o := &Orchestrator{
		registry:      reg,
		logger:        slog.Default().With("component", "orchestrator"),
		stageTimeout:  DefaultStageTimeout,
		maxTokens:     DefaultMaxTokens,
		minConfidence: DefaultEntityConfidence,
		explainMethod: core.ExplanationPerturbation,
	}

	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	return o, nil
}

// Run executes the pipeline for one report. Validation failures surface as
// the returned error; every other problem degrades into stage outcomes on
// the result.
func (o *Orchestrator) Run(ctx context.Context, report core.Report) (*core.PipelineResult, error) {
	if err := core.ValidateReport(&report); err != nil {
		return nil, err
	}

	requestID := core.NewRequestID()
	start := time.Now()
	ex := &Exchange{
		Report:   report,
		ReportID: core.IDFromContent(report.Text),
	}
	logger := o.logger.With("request_id", requestID)

	outcomes := make([]core.StageOutcome, 0, 4)

	extraction := NewExtractionStage(o.registry, o.maxTokens, o.minConfidence, o.stageTimeout, logger)
	outcomes = append(outcomes, execute(ctx, extraction, ex, logger))

	severity := NewSeverityStage(o.registry, o.stageTimeout, logger)
	outcomes = append(outcomes, execute(ctx, severity, ex, logger))

	// The optional stages only read upstream exchange fields and write
	// disjoint ones, so they can fan out.
	var clusterOutcome, explainOutcome *core.StageOutcome
	g, gctx := errgroup.WithContext(ctx)

	if report.Flags.IncludeClustering {
		g.Go(func() error {
			var outcome core.StageOutcome
			if o.index == nil {
				outcome = degradedOutcome(core.StageClusterAssignment, ErrIndexRequired)
			} else {
				stage := NewClusterStage(o.registry, o.index, o.stageTimeout, logger)
				outcome = execute(gctx, stage, ex, logger)
			}
			clusterOutcome = &outcome
			return nil
		})
	}

	if report.Flags.IncludeExplainability {
		g.Go(func() error {
			stage := NewExplainStage(o.registry, o.explainMethod, o.seed, o.stageTimeout, logger)
			outcome := execute(gctx, stage, ex, logger)
			explainOutcome = &outcome
			return nil
		})
	}

	_ = g.Wait() // goroutines never return errors, outcomes carry the failures

	if clusterOutcome != nil {
		outcomes = append(outcomes, *clusterOutcome)
	}
	if explainOutcome != nil {
		outcomes = append(outcomes, *explainOutcome)
	}

	result := Aggregate(requestID, outcomes, time.Since(start))
	logger.Info("pipeline complete",
		"status", result.OverallStatus,
		"severity", result.Summary.SeverityLevel,
		"elapsed", result.Elapsed)
	return result, nil
}
