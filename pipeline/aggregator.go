package pipeline

import (
	"fmt"
	"time"

	"github.com/ghanashyam9348/adeguard/core"
)

// Confidence bounds for the alert rules.
const (
	lowConfidenceAlert = 0.6
	highConfidenceNote = 0.9
)

// Aggregate folds stage outcomes into a PipelineResult. Overall status is
// success when every requested stage succeeded, failed when severity
// classification failed, and partial otherwise. Stage payloads are carried
// through untouched.
func Aggregate(requestID string, outcomes []core.StageOutcome, elapsed time.Duration) *core.PipelineResult {
	result := &core.PipelineResult{
		RequestID:     requestID,
		Outcomes:      outcomes,
		ProcessedAt:   time.Now().UTC(),
		Elapsed:       elapsed,
		OverallStatus: core.OverallSuccess,
	}

	for _, outcome := range outcomes {
		if outcome.Status == core.StageSucceeded {
			continue
		}
		if outcome.StageName == core.StageSeverityClassification {
			result.OverallStatus = core.OverallFailed
		} else if result.OverallStatus != core.OverallFailed {
			result.OverallStatus = core.OverallPartial
		}
	}

	result.Summary = buildSummary(result)
	result.Alerts = buildAlerts(result)
	result.Recommendations = buildRecommendations(result)
	return result
}

// buildSummary derives the high-level readout from the stage payloads.
func buildSummary(result *core.PipelineResult) core.Summary {
	summary := core.Summary{
		EntityCounts: make(map[core.EntityType]int),
	}

	if extraction := result.Outcome(core.StageEntityExtraction); extraction != nil {
		for _, entity := range extraction.Entities {
			summary.EntityCounts[entity.Type]++
		}
		summary.TotalEntities = len(extraction.Entities)
	}

	if severity := result.Outcome(core.StageSeverityClassification); severity != nil && severity.Severity != nil {
		summary.SeverityLevel = severity.Severity.Level
		summary.RequiresAttention = severity.Severity.Level >= core.SeverityHigh
	}

	return summary
}

// buildAlerts emits the operator-facing alert lines.
func buildAlerts(result *core.PipelineResult) []string {
	severity := result.Outcome(core.StageSeverityClassification)
	if severity == nil || severity.Severity == nil {
		return []string{"severity classification unavailable: manual review required"}
	}

	var alerts []string
	if severity.Severity.Level == core.SeverityCritical {
		alerts = append(alerts, "critical adverse event detected: immediate attention required")
	}
	switch {
	case severity.Severity.Confidence < lowConfidenceAlert:
		alerts = append(alerts, fmt.Sprintf("low classification confidence (%.2f): manual review recommended", severity.Severity.Confidence))
	case severity.Severity.Confidence > highConfidenceNote:
		alerts = append(alerts, fmt.Sprintf("high classification confidence (%.2f)", severity.Severity.Confidence))
	}
	return alerts
}

// buildRecommendations emits the clinical follow-up actions for the
// classified severity tier. Missing severity falls into the default tier.
func buildRecommendations(result *core.PipelineResult) []string {
	level := core.SeverityLow
	if severity := result.Outcome(core.StageSeverityClassification); severity != nil && severity.Severity != nil {
		level = severity.Severity.Level
	}

	switch {
	case level >= core.SeverityHigh:
		return []string{
			"Immediately assess patient vital signs",
			"Consider discontinuation of suspected medication",
			"Document all symptoms and timeline thoroughly",
			"Report to pharmacovigilance system",
		}
	case level == core.SeverityMedium:
		return []string{
			"Monitor patient closely for symptom progression",
			"Consider dose adjustment or alternative medication",
			"Schedule follow-up within 24-48 hours",
		}
	default:
		return []string{
			"Continue monitoring for symptom changes",
			"Patient education on symptom recognition",
			"Document for future reference",
		}
	}
}
