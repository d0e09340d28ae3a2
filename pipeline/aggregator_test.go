package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghanashyam9348/adeguard/core"
)

func succeededSeverity(level core.SeverityLevel, confidence float64) core.StageOutcome {
	return core.StageOutcome{
		StageName: core.StageSeverityClassification,
		Status:    core.StageSucceeded,
		Severity: &core.SeverityResult{
			Level:      level,
			Confidence: confidence,
			Method:     core.SeverityMethodModel,
		},
	}
}

func TestAggregateAllSucceeded(t *testing.T) {
	outcomes := []core.StageOutcome{
		{
			StageName: core.StageEntityExtraction,
			Status:    core.StageSucceeded,
			Entities: []core.Entity{
				{SurfaceText: "fever", Type: core.EntitySymptom},
				{SurfaceText: "rash", Type: core.EntitySymptom},
				{SurfaceText: "aspirin", Type: core.EntityDrug},
			},
		},
		succeededSeverity(core.SeverityMedium, 0.7),
	}

	result := Aggregate("req-1", outcomes, 120*time.Millisecond)

	assert.Equal(t, core.OverallSuccess, result.OverallStatus)
	assert.Equal(t, "req-1", result.RequestID)
	assert.Equal(t, 120*time.Millisecond, result.Elapsed)
	assert.False(t, result.ProcessedAt.IsZero())

	assert.Equal(t, core.SeverityMedium, result.Summary.SeverityLevel)
	assert.Equal(t, 3, result.Summary.TotalEntities)
	assert.Equal(t, 2, result.Summary.EntityCounts[core.EntitySymptom])
	assert.Equal(t, 1, result.Summary.EntityCounts[core.EntityDrug])
	assert.False(t, result.Summary.RequiresAttention)
}

func TestAggregateOptionalStageFailureIsPartial(t *testing.T) {
	outcomes := []core.StageOutcome{
		{StageName: core.StageEntityExtraction, Status: core.StageSucceeded},
		succeededSeverity(core.SeverityLow, 0.8),
		{StageName: core.StageClusterAssignment, Status: core.StageSkipped, ErrorKind: core.ErrorKindCapability},
	}

	result := Aggregate("req-2", outcomes, time.Millisecond)
	assert.Equal(t, core.OverallPartial, result.OverallStatus)
}

func TestAggregateSeverityFailureIsFailed(t *testing.T) {
	outcomes := []core.StageOutcome{
		{StageName: core.StageEntityExtraction, Status: core.StageSucceeded},
		{StageName: core.StageSeverityClassification, Status: core.StageFailed, ErrorKind: core.ErrorKindInternal},
	}

	result := Aggregate("req-3", outcomes, time.Millisecond)
	assert.Equal(t, core.OverallFailed, result.OverallStatus)
	assert.Contains(t, result.Alerts[0], "manual review")
}

func TestAggregateCriticalAlert(t *testing.T) {
	outcomes := []core.StageOutcome{succeededSeverity(core.SeverityCritical, 0.95)}

	result := Aggregate("req-4", outcomes, time.Millisecond)

	assert.True(t, result.Summary.RequiresAttention)
	require.NotEmpty(t, result.Alerts)
	assert.Contains(t, result.Alerts[0], "immediate attention")
	assert.Contains(t, result.Alerts[1], "high classification confidence")
}

func TestAggregateLowConfidenceAlert(t *testing.T) {
	outcomes := []core.StageOutcome{succeededSeverity(core.SeverityLow, 0.4)}

	result := Aggregate("req-5", outcomes, time.Millisecond)

	require.Len(t, result.Alerts, 1)
	assert.Contains(t, result.Alerts[0], "manual review recommended")
}

func TestAggregateRecommendations(t *testing.T) {
	tests := []struct {
		name     string
		outcomes []core.StageOutcome
		want     string
		count    int
	}{
		{
			name:     "critical gets the urgent tier",
			outcomes: []core.StageOutcome{succeededSeverity(core.SeverityCritical, 0.9)},
			want:     "Report to pharmacovigilance system",
			count:    4,
		},
		{
			name:     "high gets the urgent tier",
			outcomes: []core.StageOutcome{succeededSeverity(core.SeverityHigh, 0.8)},
			want:     "Immediately assess patient vital signs",
			count:    4,
		},
		{
			name:     "medium gets the monitoring tier",
			outcomes: []core.StageOutcome{succeededSeverity(core.SeverityMedium, 0.7)},
			want:     "Schedule follow-up within 24-48 hours",
			count:    3,
		},
		{
			name:     "low gets the default tier",
			outcomes: []core.StageOutcome{succeededSeverity(core.SeverityLow, 0.8)},
			want:     "Document for future reference",
			count:    3,
		},
		{
			name: "missing severity gets the default tier",
			outcomes: []core.StageOutcome{
				{StageName: core.StageSeverityClassification, Status: core.StageFailed, ErrorKind: core.ErrorKindInternal},
			},
			want:  "Continue monitoring for symptom changes",
			count: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Aggregate("req-rec", tt.outcomes, time.Millisecond)
			require.Len(t, result.Recommendations, tt.count)
			assert.Contains(t, result.Recommendations, tt.want)
		})
	}
}

func TestAggregateHighSeverityRequiresAttention(t *testing.T) {
	outcomes := []core.StageOutcome{succeededSeverity(core.SeverityHigh, 0.75)}

	result := Aggregate("req-6", outcomes, time.Millisecond)
	assert.True(t, result.Summary.RequiresAttention)
	assert.Empty(t, result.Alerts)
}
