package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"slices"
	"strings"
	"time"

	"github.com/ghanashyam9348/adeguard/core"
	"github.com/ghanashyam9348/adeguard/registry"
)

const (
	// DefaultTopFeatures is how many features an explanation keeps.
	DefaultTopFeatures = 5

	// maxPerturbations caps the number of single-token perturbations per
	// explanation so long reports don't multiply inference calls.
	maxPerturbations = 16
)

// ExplainStage attributes the severity decision to input features.
// Optional: runs only when the submission requests explainability. The
// additive method delegates to the explainer capability; the perturbation
// method reuses the classifier with seeded token-dropping.
type ExplainStage struct {
	registry *registry.Registry
	method   core.ExplanationMethod
	seed     int64
	topK     int
	timeout  time.Duration
	logger   *slog.Logger
}

// NewExplainStage creates the explainability stage.
func NewExplainStage(reg *registry.Registry, method core.ExplanationMethod, seed int64, timeout time.Duration, logger *slog.Logger) *ExplainStage {
	if method == "" {
		method = core.ExplanationPerturbation
	}
	if timeout <= 0 {
		timeout = DefaultStageTimeout
	}
	return &ExplainStage{
		registry: reg,
		method:   method,
		seed:     seed,
		topK:     DefaultTopFeatures,
		timeout:  timeout,
		logger:   logger.With("stage", core.StageExplainability),
	}
}

// Name implements Stage.
func (s *ExplainStage) Name() string { return core.StageExplainability }

// Timeout implements Stage.
func (s *ExplainStage) Timeout() time.Duration { return s.timeout }

// Run produces an explanation for the severity decision already present on
// the exchange. Without a severity result there is nothing to explain and
// the stage skips.
func (s *ExplainStage) Run(ctx context.Context, ex *Exchange) core.StageOutcome {
	if ex.Severity == nil {
		s.logger.Warn("no severity result to explain, skipping")
		return degradedOutcome(s.Name(), fmt.Errorf("%w: no severity result", core.ErrCapabilityUnavailable))
	}

	var (
		explanation *core.Explanation
		err         error
	)
	switch s.method {
	case core.ExplanationAdditive:
		explanation, err = s.additive(ctx, ex)
	default:
		explanation, err = s.perturbation(ctx, ex)
	}
	if err != nil {
		return degradedOutcome(s.Name(), err)
	}

	ex.Explanation = explanation
	return core.StageOutcome{
		Status:      core.StageSucceeded,
		Explanation: explanation,
	}
}

// additive asks the explainer capability for a direct feature-weight
// decomposition of the decision.
func (s *ExplainStage) additive(ctx context.Context, ex *Exchange) (*core.Explanation, error) {
	explainer, err := s.registry.Explainer()
	if err != nil {
		return nil, err
	}

	weights, err := explainer.FeatureWeights(ctx, ex.Report.Text, ex.Severity.Level)
	if err != nil {
		return nil, err
	}
	if len(weights) > s.topK {
		weights = weights[:s.topK]
	}

	return &core.Explanation{
		Method:      core.ExplanationAdditive,
		TopFeatures: weights,
		Seed:        s.seed,
	}, nil
}

// perturbation drops single tokens and measures how much the predicted
// level's probability moves. The seeded permutation fixes which tokens are
// probed, so identical (text, model version, seed) reproduce identical
// features.
func (s *ExplainStage) perturbation(ctx context.Context, ex *Exchange) (*core.Explanation, error) {
	classifier, err := s.registry.Classifier()
	if err != nil {
		return nil, err
	}

	level := ex.Severity.Level
	baseline := probabilityOf(ex.Severity, level)

	tokens := strings.Fields(ex.Report.Text)
	rng := rand.New(rand.NewSource(s.seed))
	order := rng.Perm(len(tokens))
	if len(order) > maxPerturbations {
		order = order[:maxPerturbations]
	}
	slices.Sort(order) // probe in text order once the sample is fixed

	weights := make([]core.FeatureWeight, 0, len(order))
	for _, i := range order {
		perturbed := dropToken(tokens, i)
		result, classifyErr := classifier.ClassifySeverity(ctx, perturbed, nil)
		if classifyErr != nil {
			return nil, classifyErr
		}

		// A token matters by how much removing it lowers the level's
		// probability.
		delta := baseline - probabilityOf(result, level)
		sign := 1
		if delta < 0 {
			sign = -1
		}
		weights = append(weights, core.FeatureWeight{
			Feature:      tokens[i],
			Contribution: delta,
			Sign:         sign,
		})
	}

	slices.SortStableFunc(weights, func(a, b core.FeatureWeight) int {
		da, db := math.Abs(a.Contribution), math.Abs(b.Contribution)
		switch {
		case da > db:
			return -1
		case da < db:
			return 1
		default:
			return strings.Compare(a.Feature, b.Feature)
		}
	})
	if len(weights) > s.topK {
		weights = weights[:s.topK]
	}

	return &core.Explanation{
		Method:      core.ExplanationPerturbation,
		TopFeatures: weights,
		Seed:        s.seed,
	}, nil
}

// probabilityOf reads the probability assigned to level, falling back to
// the result confidence when no distribution is available.
func probabilityOf(result *core.SeverityResult, level core.SeverityLevel) float64 {
	if result.Probabilities != nil {
		return result.Probabilities[level]
	}
	if result.Level == level {
		return result.Confidence
	}
	return 0
}

// dropToken rebuilds the text without the token at index i.
func dropToken(tokens []string, i int) string {
	kept := make([]string, 0, len(tokens)-1)
	kept = append(kept, tokens[:i]...)
	kept = append(kept, tokens[i+1:]...)
	return strings.Join(kept, " ")
}
