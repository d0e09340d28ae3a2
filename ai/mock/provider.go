package mock

import (
	"context"
	"fmt"

	"github.com/ghanashyam9348/adeguard/ai"
	"github.com/ghanashyam9348/adeguard/core"
)

// MockProvider is a test double for ai.Provider. All four capabilities are
// deterministic mocks, individually replaceable via function fields.
type MockProvider struct {
	extractor  *MockEntityExtractor
	classifier *MockSeverityClassifier
	encoder    *MockEncoder
	explainer  *MockExplainer

	// ProbeFunc is called by Probe if set.
	// If nil, Probe always succeeds for known capabilities.
	ProbeFunc func(ctx context.Context, capability core.Capability) error

	// CloseFunc is called by Close if set.
	CloseFunc func() error
}

// NewMockProvider creates a provider where every capability uses default
// deterministic behavior.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		extractor:  NewMockEntityExtractor(),
		classifier: NewMockSeverityClassifier(),
		encoder:    NewMockEncoder(),
		explainer:  NewMockExplainer(),
	}
}

// Extractor returns the entity extraction capability.
func (p *MockProvider) Extractor() ai.EntityExtractor {
	return p.extractor
}

// Classifier returns the severity classification capability.
func (p *MockProvider) Classifier() ai.SeverityClassifier {
	return p.classifier
}

// Encoder returns the similarity encoding capability.
func (p *MockProvider) Encoder() ai.Encoder {
	return p.encoder
}

// Explainer returns the additive explanation capability.
func (p *MockProvider) Explainer() ai.Explainer {
	return p.explainer
}

// Probe reports whether the named capability can serve.
func (p *MockProvider) Probe(ctx context.Context, capability core.Capability) error {
	if p.ProbeFunc != nil {
		return p.ProbeFunc(ctx, capability)
	}
	switch capability {
	case core.CapabilityExtractor, core.CapabilityClassifier,
		core.CapabilityEncoder, core.CapabilityExplainer:
		return nil
	default:
		return fmt.Errorf("unknown capability %q", capability)
	}
}

// Version reports a fixed mock version string per capability.
func (p *MockProvider) Version(capability core.Capability) string {
	return "mock-" + string(capability) + "-v1"
}

// Close releases resources held by the provider.
func (p *MockProvider) Close() error {
	if p.CloseFunc != nil {
		return p.CloseFunc()
	}
	return nil
}

// GetMockExtractor returns the underlying mock for test assertions.
func (p *MockProvider) GetMockExtractor() *MockEntityExtractor {
	return p.extractor
}

// GetMockClassifier returns the underlying mock for test assertions.
func (p *MockProvider) GetMockClassifier() *MockSeverityClassifier {
	return p.classifier
}

// GetMockEncoder returns the underlying mock for test assertions.
func (p *MockProvider) GetMockEncoder() *MockEncoder {
	return p.encoder
}

// GetMockExplainer returns the underlying mock for test assertions.
func (p *MockProvider) GetMockExplainer() *MockExplainer {
	return p.explainer
}

// Reset clears call counts and custom functions on every capability.
func (p *MockProvider) Reset() {
	p.extractor.Reset()
	p.classifier.Reset()
	p.encoder.Reset()
	p.explainer.Reset()
	p.ProbeFunc = nil
	p.CloseFunc = nil
}
