package openai

import (
	"context"
	"log/slog"
	"math"
	"slices"

	"github.com/ghanashyam9348/adeguard/ai"
	"github.com/ghanashyam9348/adeguard/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Explainer implements ai.Explainer using OpenAI-compatible chat APIs.
// It produces the additive feature-weight decomposition of a severity grade.
type Explainer struct {
	client llms.Model
	logger *slog.Logger
}

// attribution is the wrapper structure for the LLM's JSON response.
type attribution struct {
	Features []struct {
		Feature      string  `json:"feature"`
		Contribution float64 `json:"contribution"`
	} `json:"features"`
}

// newExplainer is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newExplainer(config *ai.Config) (*Explainer, error) {
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

	return &Explainer{
		client: client,
		logger: slog.Default().With("component", "openai-explainer"),
	}, nil
}

// NewExplainer creates a new additive explainer using the provided configuration.
//
// Returns ai.Explainer interface to enforce abstraction.
func NewExplainer(config *ai.Config) (ai.Explainer, error) {
	return newExplainer(config)
}

// FeatureWeights decomposes the severity decision into per-word contributions,
// ordered by descending magnitude.
func (e *Explainer) FeatureWeights(ctx context.Context, text string, level core.SeverityLevel) ([]core.FeatureWeight, error) {
	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(buildExplanationPrompt(level))},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(text)},
		},
	}

	var result attribution
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := e.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			e.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return nil, err
		}

		if len(response.Choices) < 1 {
			return []core.FeatureWeight{}, nil
		}

		if err := decodeJSONResponse(response.Choices[0].Content, &result); err != nil {
			lastErr = err
			e.logger.Warn("error parsing explainer response",
				"attempt", attempt+1,
				"err", err)
			continue
		}

		lastErr = nil
		break
	}

	if lastErr != nil {
		e.logger.Error("failed to parse explainer response after retries", "err", lastErr)
		return nil, lastErr
	}

	weights := make([]core.FeatureWeight, 0, len(result.Features))
	for _, f := range result.Features {
		sign := 1
		if f.Contribution < 0 {
			sign = -1
		}
		weights = append(weights, core.FeatureWeight{
			Feature:      f.Feature,
			Contribution: f.Contribution,
			Sign:         sign,
		})
	}

	slices.SortFunc(weights, func(a, b core.FeatureWeight) int {
		am, bm := math.Abs(a.Contribution), math.Abs(b.Contribution)
		switch {
		case am > bm:
			return -1
		case am < bm:
			return 1
		default:
			return 0
		}
	})

	return weights, nil
}

var _ ai.Explainer = (*Explainer)(nil)
