package mock

import (
	"context"
	"strings"

	"github.com/ghanashyam9348/adeguard/core"
)

// Keyword tiers for the default mock classification, from most to least
// severe. First tier with a hit wins.
var (
	criticalTerms = []string{"anaphylaxis", "cardiac arrest", "life-threatening", "death", "died"}
	highTerms     = []string{"hospitalized", "hospitalization", "emergency", "intensive care", "severe"}
	mediumTerms   = []string{"fever", "vomiting", "difficulty breathing", "high temperature"}
)

// MockSeverityClassifier is a test double for ai.SeverityClassifier.
// It allows custom behavior injection via function fields.
type MockSeverityClassifier struct {
	// ClassifySeverityFunc is called by ClassifySeverity if set.
	// If nil, uses default keyword-tier deterministic behavior.
	ClassifySeverityFunc func(ctx context.Context, text string, entities []core.Entity) (*core.SeverityResult, error)

	callCount int
}

// NewMockSeverityClassifier creates a mock classifier with default deterministic behavior.
// Note: Returns concrete type to allow test assertions and behavior injection.
func NewMockSeverityClassifier() *MockSeverityClassifier {
	return &MockSeverityClassifier{}
}

// ClassifySeverity grades the text by keyword tier. The same text always
// yields the same result.
func (m *MockSeverityClassifier) ClassifySeverity(ctx context.Context, text string, entities []core.Entity) (*core.SeverityResult, error) {
	m.callCount++

	if m.ClassifySeverityFunc != nil {
		return m.ClassifySeverityFunc(ctx, text, entities)
	}

	lower := strings.ToLower(text)
	probs := map[core.SeverityLevel]float64{
		core.SeverityLow:      0.60,
		core.SeverityMedium:   0.30,
		core.SeverityHigh:     0.10,
		core.SeverityCritical: 0.00,
	}

	switch {
	case containsAny(lower, criticalTerms):
		probs = map[core.SeverityLevel]float64{
			core.SeverityLow:      0.00,
			core.SeverityMedium:   0.05,
			core.SeverityHigh:     0.05,
			core.SeverityCritical: 0.90,
		}
	case containsAny(lower, highTerms):
		probs = map[core.SeverityLevel]float64{
			core.SeverityLow:      0.05,
			core.SeverityMedium:   0.15,
			core.SeverityHigh:     0.80,
			core.SeverityCritical: 0.00,
		}
	case containsAny(lower, mediumTerms):
		probs = map[core.SeverityLevel]float64{
			core.SeverityLow:      0.20,
			core.SeverityMedium:   0.70,
			core.SeverityHigh:     0.10,
			core.SeverityCritical: 0.00,
		}
	}

	level, confidence := core.ArgMaxSeverity(probs)
	return &core.SeverityResult{
		Level:         level,
		Confidence:    confidence,
		Probabilities: probs,
		Method:        core.SeverityMethodModel,
	}, nil
}

// CallCount returns the number of times ClassifySeverity was called.
func (m *MockSeverityClassifier) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockSeverityClassifier) Reset() {
	m.callCount = 0
	m.ClassifySeverityFunc = nil
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}
