package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghanashyam9348/adeguard/core"
)

func TestPerturbationExplanationIsReproducible(t *testing.T) {
	orchestrator, _, _ := newTestPipeline(t, WithSeed(42))
	ctx := context.Background()

	report := core.Report{
		Text:  "patient was hospitalized with severe vomiting after the second dose",
		Flags: core.Flags{IncludeExplainability: true},
	}

	first, err := orchestrator.Run(ctx, report)
	require.NoError(t, err)
	second, err := orchestrator.Run(ctx, report)
	require.NoError(t, err)

	a := first.Outcome(core.StageExplainability).Explanation
	b := second.Outcome(core.StageExplainability).Explanation
	require.NotNil(t, a)
	require.NotNil(t, b)

	assert.Equal(t, core.ExplanationPerturbation, a.Method)
	assert.Equal(t, int64(42), a.Seed)
	assert.Equal(t, a.TopFeatures, b.TopFeatures)
}

func TestPerturbationHighlightsSeverityKeyword(t *testing.T) {
	orchestrator, _, _ := newTestPipeline(t, WithSeed(7))

	// Dropping "hospitalized" demotes the text from High, so it must carry
	// a positive contribution.
	result, err := orchestrator.Run(context.Background(), core.Report{
		Text:  "patient hospitalized after reaction",
		Flags: core.Flags{IncludeExplainability: true},
	})
	require.NoError(t, err)

	explanation := result.Outcome(core.StageExplainability).Explanation
	require.NotNil(t, explanation)
	require.NotEmpty(t, explanation.TopFeatures)

	top := explanation.TopFeatures[0]
	assert.Equal(t, "hospitalized", top.Feature)
	assert.Positive(t, top.Contribution)
	assert.Equal(t, 1, top.Sign)
}

func TestAdditiveExplanation(t *testing.T) {
	orchestrator, _, _ := newTestPipeline(t, WithExplanationMethod(core.ExplanationAdditive))

	result, err := orchestrator.Run(context.Background(), core.Report{
		Text:  "anaphylaxis after penicillin",
		Flags: core.Flags{IncludeExplainability: true},
	})
	require.NoError(t, err)

	explanation := result.Outcome(core.StageExplainability).Explanation
	require.NotNil(t, explanation)
	assert.Equal(t, core.ExplanationAdditive, explanation.Method)
	assert.NotEmpty(t, explanation.TopFeatures)
	assert.LessOrEqual(t, len(explanation.TopFeatures), DefaultTopFeatures)
}

func TestExplainSkipsWithoutClassifier(t *testing.T) {
	orchestrator, _, reg := newTestPipeline(t)
	require.NoError(t, reg.MarkFailed(core.CapabilityClassifier, nil))

	result, err := orchestrator.Run(context.Background(), core.Report{
		Text:  "fever after vaccine",
		Flags: core.Flags{IncludeExplainability: true},
	})
	require.NoError(t, err)

	// Severity fell back to the heuristic; the perturbation explainer needs
	// the classifier and skips.
	explain := result.Outcome(core.StageExplainability)
	require.NotNil(t, explain)
	assert.Equal(t, core.StageSkipped, explain.Status)
	assert.Equal(t, core.ErrorKindCapability, explain.ErrorKind)
}
