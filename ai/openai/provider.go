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


package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ghanashyam9348/adeguard/ai"
	"github.com/ghanashyam9348/adeguard/core"
)

// probeText is a short canary report used to verify capabilities can serve.
const probeText = "patient had fever after vaccine"

// Provider implements ai.Provider using OpenAI-compatible services.
// It manages one instance of each of the four inference capabilities.
type Provider struct {
	config     *ai.Config
	extractor  *EntityExtractor
	classifier *SeverityClassifier
	encoder    *Encoder
	explainer  *Explainer
	logger     *slog.Logger
}

// NewProvider creates a new provider over OpenAI-compatible services.
// The config is validated and normalized before use.
//
// Returns ai.Provider interface (not *Provider) to enforce abstraction
// and prevent coupling to OpenAI-specific implementation details.
func NewProvider(config *ai.Config) (ai.Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	extractor, err := newEntityExtractor(config)
	if err != nil {
		return nil, err
	}

	classifier, err := newSeverityClassifier(config)
	if err != nil {
		return nil, err
	}

	encoder, err := newEncoder(config)
	if err != nil {
		return nil, err
	}

	explainer, err := newExplainer(config)
	if err != nil {
		return nil, err
	}

	return &Provider{
		config:     config,
		extractor:  extractor,
		classifier: classifier,
		encoder:    encoder,
		explainer:  explainer,
		logger:     slog.Default().With("component", "openai-provider"),
	}, nil
}

// Extractor returns the entity extraction capability.
func (p *Provider) Extractor() ai.EntityExtractor {
	return p.extractor
}

// Classifier returns the severity classification capability.
func (p *Provider) Classifier() ai.SeverityClassifier {
	return p.classifier
}

// Encoder returns the similarity encoding capability.
func (p *Provider) Encoder() ai.Encoder {
	return p.encoder
}

// Explainer returns the additive explanation capability.
func (p *Provider) Explainer() ai.Explainer {
	return p.explainer
}

// Probe runs a cheap canary inference against the named capability.
func (p *Provider) Probe(ctx context.Context, capability core.Capability) error {
	var err error
	switch capability {
	case core.CapabilityExtractor:
		_, err = p.extractor.ExtractEntities(ctx, probeText)
	case core.CapabilityClassifier:
		_, err = p.classifier.ClassifySeverity(ctx, probeText, nil)
	case core.CapabilityEncoder:
		_, err = p.encoder.EmbedText(ctx, probeText)
	case core.CapabilityExplainer:
		_, err = p.explainer.FeatureWeights(ctx, probeText, core.SeverityLow)
	default:
		err = fmt.Errorf("unknown capability %q", capability)
	}
	if err != nil {
		p.logger.Warn("capability probe failed", "capability", capability, "err", err)
	}
	return err
}

// Version reports the configured model identifier for the capability.
func (p *Provider) Version(capability core.Capability) string {
	switch capability {
	case core.CapabilityExtractor:
		return p.config.ExtractorModel
	case core.CapabilityClassifier:
		return p.config.ClassifierModel
	case core.CapabilityEncoder:
		return p.config.EmbeddingModel
	case core.CapabilityExplainer:
		return p.config.ClassifierModel
	default:
		return ""
	}
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}
