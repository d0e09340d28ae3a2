package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ghanashyam9348/adeguard/core"
)

func TestHeuristicSeverity(t *testing.T) {
	tests := []struct {
		name string
		text string
		want core.SeverityLevel
	}{
		{"anaphylaxis is critical", "Patient went into anaphylaxis minutes after injection", core.SeverityCritical},
		{"cardiac arrest is critical", "cardiac arrest reported 2 hours after dose", core.SeverityCritical},
		{"death is critical", "patient death reported by family", core.SeverityCritical},
		{"hospitalization is high", "Patient was hospitalized overnight for observation", core.SeverityHigh},
		{"emergency is high", "taken to the emergency department", core.SeverityHigh},
		{"intensive care is high", "transferred to intensive care", core.SeverityHigh},
		{"fever is medium", "developed a fever of 39C the next morning", core.SeverityMedium},
		{"vomiting is medium", "persistent vomiting for two days", core.SeverityMedium},
		{"mild complaint is low", "slight soreness at the injection site", core.SeverityLow},
		{"empty-ish text is low", "ok", core.SeverityLow},
		{"critical outranks medium", "fever then anaphylaxis", core.SeverityCritical},
		{"high outranks medium", "fever, later hospitalized", core.SeverityHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := HeuristicSeverity(tt.text)
			assert.Equal(t, tt.want, result.Level)
			assert.Equal(t, core.SeverityMethodHeuristic, result.Method)
			assert.Greater(t, result.Confidence, 0.0)
			assert.LessOrEqual(t, result.Confidence, 1.0)
		})
	}
}

func TestHeuristicSeverityIsPure(t *testing.T) {
	text := "Patient hospitalized with severe difficulty breathing"

	first := HeuristicSeverity(text)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, HeuristicSeverity(text))
	}
}
