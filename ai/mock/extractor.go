package mock

import (
	"context"
	"slices"
	"strings"

	"github.com/ghanashyam9348/adeguard/core"
)

// lexicon maps known clinical surface forms to entity types for the default
// mock behavior. Lookup is case-insensitive against the input text.
var lexicon = []struct {
	term       string
	entityType core.EntityType
	confidence float64
}{
	{"amoxicillin", core.EntityDrug, 0.99},
	{"ibuprofen", core.EntityDrug, 0.98},
	{"penicillin", core.EntityDrug, 0.98},
	{"aspirin", core.EntityDrug, 0.97},
	{"vaccine", core.EntityDrug, 0.95},
	{"anaphylaxis", core.EntitySymptom, 0.97},
	{"headache", core.EntitySymptom, 0.96},
	{"fever", core.EntitySymptom, 0.95},
	{"rash", core.EntitySymptom, 0.94},
	{"vomiting", core.EntitySymptom, 0.93},
	{"nausea", core.EntitySymptom, 0.92},
	{"dizziness", core.EntitySymptom, 0.91},
	{"swelling", core.EntitySymptom, 0.90},
	{"asthma", core.EntityCondition, 0.92},
	{"diabetes", core.EntityCondition, 0.92},
	{"hypertension", core.EntityCondition, 0.91},
	{"allergy", core.EntityCondition, 0.90},
	{"second dose", core.EntityDosage, 0.90},
	{"500mg", core.EntityDosage, 0.93},
}

// MockEntityExtractor is a test double for ai.EntityExtractor.
// It allows custom behavior injection via function fields.
type MockEntityExtractor struct {
	// ExtractEntitiesFunc is called by ExtractEntities if set.
	// If nil, uses default lexicon-based deterministic behavior.
	ExtractEntitiesFunc func(ctx context.Context, text string) ([]core.Entity, error)

	callCount int
}

// NewMockEntityExtractor creates a mock extractor with default deterministic behavior.
// Note: Returns concrete type to allow test assertions and behavior injection.
func NewMockEntityExtractor() *MockEntityExtractor {
	return &MockEntityExtractor{}
}

// ExtractEntities finds lexicon terms in the text and returns them as typed
// spans ordered by start. The same text always yields the same entities.
func (m *MockEntityExtractor) ExtractEntities(ctx context.Context, text string) ([]core.Entity, error) {
	m.callCount++

	if m.ExtractEntitiesFunc != nil {
		return m.ExtractEntitiesFunc(ctx, text)
	}

	lower := strings.ToLower(text)
	entities := make([]core.Entity, 0, 4)
	for _, entry := range lexicon {
		start := strings.Index(lower, entry.term)
		if start < 0 {
			continue
		}
		entities = append(entities, core.Entity{
			Start:       start,
			End:         start + len(entry.term),
			SurfaceText: text[start : start+len(entry.term)],
			Type:        entry.entityType,
			Confidence:  entry.confidence,
		})
	}

	slices.SortFunc(entities, func(a, b core.Entity) int {
		return a.Start - b.Start
	})

	return entities, nil
}

// CallCount returns the number of times ExtractEntities was called.
func (m *MockEntityExtractor) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockEntityExtractor) Reset() {
	m.callCount = 0
	m.ExtractEntitiesFunc = nil
}
