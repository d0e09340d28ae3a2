package ai

import (
	"context"

	"github.com/ghanashyam9348/adeguard/core"
)

// EntityExtractor extracts typed clinical spans from report text.
// Implementations must be thread-safe for concurrent use and deterministic
// for a fixed model version and input.
type EntityExtractor interface {
	// ExtractEntities analyzes text and returns the clinical entities found,
	// ordered by span start. Returns an empty slice if nothing is found.
	ExtractEntities(ctx context.Context, text string) ([]core.Entity, error)
}

// SeverityClassifier grades the severity of an adverse event report.
// Implementations must be thread-safe for concurrent use.
type SeverityClassifier interface {
	// ClassifySeverity returns the predicted severity level with per-class
	// probabilities. The entity list may be empty; classification still runs
	// on raw text.
	ClassifySeverity(ctx context.Context, text string, entities []core.Entity) (*core.SeverityResult, error)
}

// Encoder generates vector embeddings from text for similarity comparison.
// Implementations must be thread-safe for concurrent use.
type Encoder interface {
	// EmbedText generates a vector embedding for a single text string.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates embeddings for multiple texts in a batch.
	// The returned slice is ordered like the input.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Explainer produces the additive feature-weight decomposition of a
// severity decision. The perturbation-based method is built on top of
// SeverityClassifier instead and does not appear here.
type Explainer interface {
	// FeatureWeights decomposes the decision for the given text and level
	// into per-feature contributions, ordered by descending magnitude.
	FeatureWeights(ctx context.Context, text string, level core.SeverityLevel) ([]core.FeatureWeight, error)
}

// Provider aggregates the four inference capabilities behind one lifecycle.
// A provider creates and owns the capability instances; the registry
// consults it for probing and version reporting.
type Provider interface {
	// Extractor returns the entity extraction capability.
	Extractor() EntityExtractor

	// Classifier returns the severity classification capability.
	Classifier() SeverityClassifier

	// Encoder returns the similarity encoding capability.
	Encoder() Encoder

	// Explainer returns the additive explanation capability.
	Explainer() Explainer

	// Probe verifies that the named capability can serve inference.
	// A non-nil error marks the capability as failed in the registry.
	Probe(ctx context.Context, capability core.Capability) error

	// Version reports the model version string for the named capability.
	Version(capability core.Capability) string

	// Close releases resources held by the provider and its capabilities.
	Close() error
}
