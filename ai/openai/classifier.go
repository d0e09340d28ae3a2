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

	"github.com/ghanashyam9348/adeguard/ai"
	"github.com/ghanashyam9348/adeguard/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// SeverityClassifier implements ai.SeverityClassifier using OpenAI-compatible chat APIs.
type SeverityClassifier struct {
	client llms.Model
	logger *slog.Logger
}

// classification is the wrapper structure for the LLM's JSON response.
type classification struct {
	Probabilities map[string]float64 `json:"probabilities"`
}

// newSeverityClassifier is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newSeverityClassifier(config *ai.Config) (*SeverityClassifier, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.InferenceHost),
		openai.WithToken("none"),
		openai.WithModel(config.ClassifierModel),
	)
	if err != nil {
		return nil, err
	}

	return &SeverityClassifier{
		client: client,
		logger: slog.Default().With("component", "openai-classifier"),
	}, nil
}

// NewSeverityClassifier creates a new severity classifier using the provided configuration.
//
// Returns ai.SeverityClassifier interface to enforce abstraction.
func NewSeverityClassifier(config *ai.Config) (ai.SeverityClassifier, error) {
	return newSeverityClassifier(config)
}

// ClassifySeverity grades the report via the LLM and returns the arg-max
// class with its probability as confidence. Temperature is pinned to zero
// so output is reproducible for a fixed model version and input.
func (c *SeverityClassifier) ClassifySeverity(ctx context.Context, text string, entities []core.Entity) (*core.SeverityResult, error) {
	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(buildClassificationPrompt())},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(text)},
		},
	}

	var result classification
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := c.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			c.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return nil, err
		}

		if len(response.Choices) < 1 {
			lastErr = core.ErrInternal
			continue
		}

		if err := decodeJSONResponse(response.Choices[0].Content, &result); err != nil {
			lastErr = err
			c.logger.Warn("error parsing classifier response",
				"attempt", attempt+1,
				"err", err)
			continue
		}

		lastErr = nil
		break
	}

	if lastErr != nil {
		c.logger.Error("failed to parse classifier response after retries", "err", lastErr)
		return nil, lastErr
	}

	probs := make(map[core.SeverityLevel]float64, len(core.SeverityLevels))
	for _, level := range core.SeverityLevels {
		probs[level] = result.Probabilities[level.String()]
	}

	level, confidence := core.ArgMaxSeverity(probs)
	return &core.SeverityResult{
		Level:         level,
		Confidence:    confidence,
		Probabilities: probs,
		Method:        core.SeverityMethodModel,
	}, nil
}
