package mock

import (
	"context"
	"strings"

	"github.com/ghanashyam9348/adeguard/core"
)

// MockExplainer is a test double for ai.Explainer.
// It allows custom behavior injection via function fields.
type MockExplainer struct {
	// FeatureWeightsFunc is called by FeatureWeights if set.
	// If nil, uses default keyword-based deterministic behavior.
	FeatureWeightsFunc func(ctx context.Context, text string, level core.SeverityLevel) ([]core.FeatureWeight, error)

	callCount int
}

// NewMockExplainer creates a mock explainer with default deterministic behavior.
// Note: Returns concrete type to allow test assertions and behavior injection.
func NewMockExplainer() *MockExplainer {
	return &MockExplainer{}
}

// FeatureWeights attributes the level to severity keywords found in the text,
// with contributions decaying by match order. The same input always yields the
// same weights.
func (m *MockExplainer) FeatureWeights(ctx context.Context, text string, level core.SeverityLevel) ([]core.FeatureWeight, error) {
	m.callCount++

	if m.FeatureWeightsFunc != nil {
		return m.FeatureWeightsFunc(ctx, text, level)
	}

	lower := strings.ToLower(text)
	weights := make([]core.FeatureWeight, 0, 4)
	contribution := 0.8
	for _, tier := range [][]string{criticalTerms, highTerms, mediumTerms} {
		for _, term := range tier {
			if !strings.Contains(lower, term) {
				continue
			}
			weights = append(weights, core.FeatureWeight{
				Feature:      term,
				Contribution: contribution,
				Sign:         1,
			})
			contribution -= 0.1
			if contribution < 0.1 {
				contribution = 0.1
			}
		}
	}

	if len(weights) == 0 {
		weights = append(weights, core.FeatureWeight{
			Feature:      "no severity keywords",
			Contribution: -0.5,
			Sign:         -1,
		})
	}

	return weights, nil
}

// CallCount returns the number of times FeatureWeights was called.
func (m *MockExplainer) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockExplainer) Reset() {
	m.callCount = 0
	m.FeatureWeightsFunc = nil
}
