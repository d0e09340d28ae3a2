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
	"log/slog"
	"slices"
	"strings"

	"github.com/ghanashyam9348/adeguard/ai"
	"github.com/ghanashyam9348/adeguard/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// EntityExtractor implements ai.EntityExtractor using OpenAI-compatible chat APIs.
type EntityExtractor struct {
	client    llms.Model
	threshold float64
	logger    *slog.Logger
}

// extractedEntity is an internal type used for JSON unmarshaling.
// It matches the structure requested from the LLM.
type extractedEntity struct {
	Text       string  `json:"text"`
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

// extraction is the wrapper structure for the LLM's JSON response.
type extraction struct {
	Entities []extractedEntity `json:"entities"`
}

// newEntityExtractor is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newEntityExtractor(config *ai.Config) (*EntityExtractor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.InferenceHost),
		openai.WithToken("none"),
		openai.WithModel(config.ExtractorModel),
	)
	if err != nil {
		return nil, err
	}

	return &EntityExtractor{
		client:    client,
		threshold: config.EntityConfidenceThreshold,
		logger:    slog.Default().With("component", "openai-extractor"),
	}, nil
}

// NewEntityExtractor creates a new entity extractor using the provided configuration.
//
// Returns ai.EntityExtractor interface to enforce abstraction.
func NewEntityExtractor(config *ai.Config) (ai.EntityExtractor, error) {
	return newEntityExtractor(config)
}

// ExtractEntities extracts clinical entities from report text using an LLM.
// Spans below the confidence threshold are dropped; results are ordered by
// span start. Temperature is pinned to zero so output is reproducible for a
// fixed model version and input.
func (e *EntityExtractor) ExtractEntities(ctx context.Context, text string) ([]core.Entity, error) {
	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(buildExtractionPrompt())},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(text)},
		},
	}

	// Try up to 3 times in case of malformed JSON
	var result extraction
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := e.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			e.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return nil, err
		}

		if len(response.Choices) < 1 {
			e.logger.Debug("no choices returned from model")
			return []core.Entity{}, nil
		}

		if err := decodeJSONResponse(response.Choices[0].Content, &result); err != nil {
			lastErr = err
			e.logger.Warn("error parsing extractor response",
				"attempt", attempt+1,
				"err", err)
			continue
		}

		lastErr = nil
		break
	}

	if lastErr != nil {
		e.logger.Error("failed to parse extractor response after retries", "err", lastErr)
		return nil, lastErr
	}

	entities := e.resolveSpans(text, result.Entities)

	slices.SortFunc(entities, func(a, b core.Entity) int {
		return a.Start - b.Start
	})

	e.logger.Debug("extracted entities",
		"total", len(result.Entities),
		"resolved", len(entities))

	return entities, nil
}

// resolveSpans locates each reported surface form in the original text and
// drops spans the model could not ground or that fall below the threshold.
func (e *EntityExtractor) resolveSpans(text string, raw []extractedEntity) []core.Entity {
	lower := strings.ToLower(text)
	entities := make([]core.Entity, 0, len(raw))
	for _, ent := range raw {
		if ent.Confidence < e.threshold {
			continue
		}
		entityType := core.EntityType(strings.ToUpper(strings.TrimSpace(ent.Type)))
		if !ai.ValidEntityType(entityType) {
			e.logger.Debug("skipping entity with unknown type", "type", ent.Type)
			continue
		}
		surface := strings.TrimSpace(ent.Text)
		if surface == "" {
			continue
		}
		start := strings.Index(lower, strings.ToLower(surface))
		if start < 0 {
			e.logger.Debug("skipping entity not found in text", "text", surface)
			continue
		}
		entities = append(entities, core.Entity{
			Start:       start,
			End:         start + len(surface),
			SurfaceText: text[start : start+len(surface)],
			Type:        entityType,
			Confidence:  ent.Confidence,
		})
	}
	return entities
}
