package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/ghanashyam9348/adeguard/core"
	"github.com/ghanashyam9348/adeguard/registry"
)

// Keyword tiers for the heuristic fallback, checked from most to least
// severe. The first tier with a hit decides the level.
var (
	criticalKeywords = []string{
		"anaphylaxis", "cardiac arrest", "death", "died", "life-threatening",
		"life threatening", "respiratory failure",
	}
	highKeywords = []string{
		"hospitalized", "hospitalization", "hospitalised", "emergency",
		"intensive care", "icu", "severe",
	}
	mediumKeywords = []string{
		"fever", "vomiting", "difficulty breathing", "high temperature",
		"persistent",
	}
)

// HeuristicSeverity grades report text with pure keyword rules. It never
// fails and depends on nothing but its input, which makes it the fallback
// when the classifier capability is down.
func HeuristicSeverity(text string) *core.SeverityResult {
	lower := strings.ToLower(text)

	level := core.SeverityLow
	confidence := 0.5
	switch {
	case containsAny(lower, criticalKeywords):
		level = core.SeverityCritical
		confidence = 0.8
	case containsAny(lower, highKeywords):
		level = core.SeverityHigh
		confidence = 0.7
	case containsAny(lower, mediumKeywords):
		level = core.SeverityMedium
		confidence = 0.6
	}

	return &core.SeverityResult{
		Level:      level,
		Confidence: confidence,
		Method:     core.SeverityMethodHeuristic,
	}
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

// SeverityStage grades the clinical severity of the report. The model
// classifier is primary; any classifier problem falls back to the keyword
// heuristic, so the stage itself only fails on an internal fault.
type SeverityStage struct {
	registry *registry.Registry
	timeout  time.Duration
	logger   *slog.Logger
}

// NewSeverityStage creates the severity classification stage.
func NewSeverityStage(reg *registry.Registry, timeout time.Duration, logger *slog.Logger) *SeverityStage {
	if timeout <= 0 {
		timeout = DefaultStageTimeout
	}
	return &SeverityStage{
		registry: reg,
		timeout:  timeout,
		logger:   logger.With("stage", core.StageSeverityClassification),
	}
}

// Name implements Stage.
func (s *SeverityStage) Name() string { return core.StageSeverityClassification }

// Timeout implements Stage.
func (s *SeverityStage) Timeout() time.Duration { return s.timeout }

// Run classifies severity via the model, falling back to the heuristic when
// the classifier is not ready or its inference errors out. The fallback
// outcome still succeeds but carries the primary path's error kind so audit
// trails show why the model was bypassed.
func (s *SeverityStage) Run(ctx context.Context, ex *Exchange) core.StageOutcome {
	var fallbackKind string
	classifier, err := s.registry.Classifier()
	if err == nil {
		result, classifyErr := classifier.ClassifySeverity(ctx, ex.Report.Text, ex.Entities)
		if classifyErr == nil {
			ex.Severity = result
			return core.StageOutcome{
				Status:   core.StageSucceeded,
				Severity: result,
			}
		}
		s.logger.Warn("classifier inference failed, using heuristic", "err", classifyErr)
		fallbackKind = classifyErrorKind(classifyErr)
	} else {
		s.logger.Warn("classifier unavailable, using heuristic", "err", err)
		fallbackKind = core.ErrorKindCapability
	}

	result := HeuristicSeverity(ex.Report.Text)
	ex.Severity = result
	return core.StageOutcome{
		Status:    core.StageSucceeded,
		ErrorKind: fallbackKind,
		Severity:  result,
	}
}

// classifyErrorKind maps a classifier inference error onto the outcome
// taxonomy.
func classifyErrorKind(err error) string {
	switch {
	case errors.Is(err, core.ErrCapabilityUnavailable):
		return core.ErrorKindCapability
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, core.ErrInferenceTimeout):
		return core.ErrorKindTimeout
	default:
		return core.ErrorKindInternal
	}
}
