package pipeline

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/ghanashyam9348/adeguard/core"
	"github.com/ghanashyam9348/adeguard/registry"
)

const (
	// DefaultMaxTokens caps report input at the extractor's context window,
	// counted in whitespace tokens.
	DefaultMaxTokens = 512

	// DefaultEntityConfidence drops extracted spans the model is not sure
	// about.
	DefaultEntityConfidence = 0.8

	// DefaultStageTimeout bounds a single stage's inference calls.
	DefaultStageTimeout = 30 * time.Second
)

// ExtractionStage finds typed clinical entity spans in the report text.
// It degrades to a skip when the extractor capability is not ready.
type ExtractionStage struct {
	registry      *registry.Registry
	maxTokens     int
	minConfidence float64
	timeout       time.Duration
	logger        *slog.Logger
}

// NewExtractionStage creates the entity extraction stage.
func NewExtractionStage(reg *registry.Registry, maxTokens int, minConfidence float64, timeout time.Duration, logger *slog.Logger) *ExtractionStage {
	if maxTokens < 1 {
		maxTokens = DefaultMaxTokens
	}
	if timeout <= 0 {
		timeout = DefaultStageTimeout
	}
	return &ExtractionStage{
		registry:      reg,
		maxTokens:     maxTokens,
		minConfidence: minConfidence,
		timeout:       timeout,
		logger:        logger.With("stage", core.StageEntityExtraction),
	}
}

// Name implements Stage.
func (s *ExtractionStage) Name() string { return core.StageEntityExtraction }

// Timeout implements Stage.
func (s *ExtractionStage) Timeout() time.Duration { return s.timeout }

// Run extracts entities from the (possibly truncated) report text, filters
// them by confidence, and orders them by span start.
func (s *ExtractionStage) Run(ctx context.Context, ex *Exchange) core.StageOutcome {
	extractor, err := s.registry.Extractor()
	if err != nil {
		s.logger.Warn("extractor unavailable, skipping", "err", err)
		return degradedOutcome(s.Name(), err)
	}

	text, truncated := truncateTokens(ex.Report.Text, s.maxTokens)
	if truncated {
		s.logger.Debug("input truncated", "max_tokens", s.maxTokens)
	}

	entities, err := extractor.ExtractEntities(ctx, text)
	if err != nil {
		return degradedOutcome(s.Name(), err)
	}

	kept := entities[:0]
	for _, entity := range entities {
		if entity.Confidence >= s.minConfidence {
			kept = append(kept, entity)
		}
	}
	slices.SortFunc(kept, func(a, b core.Entity) int {
		return a.Start - b.Start
	})

	ex.Entities = kept
	ex.Truncated = truncated
	return core.StageOutcome{
		Status:    core.StageSucceeded,
		Entities:  kept,
		Truncated: truncated,
	}
}

// truncateTokens caps text at maxTokens whitespace-delimited tokens.
// Reports a flag when anything was cut.
func truncateTokens(text string, maxTokens int) (string, bool) {
	fields := strings.Fields(text)
	if len(fields) <= maxTokens {
		return text, false
	}
	return strings.Join(fields[:maxTokens], " "), true
}
