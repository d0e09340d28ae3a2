package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "same content produces same ID", content: "Patient had mild headache"},
		{name: "empty string", content: ""},
		{name: "long content", content: "Severe anaphylaxis requiring hospitalization after the second dose was administered"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("patient had fever")
	id2 := IDFromContent("patient had rash")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestNewRequestID_Unique(t *testing.T) {
	if NewRequestID() == NewRequestID() {
		t.Error("NewRequestID() produced duplicate IDs")
	}
}

func TestSeverityLevel_Ordering(t *testing.T) {
	if !(SeverityLow < SeverityMedium && SeverityMedium < SeverityHigh && SeverityHigh < SeverityCritical) {
		t.Error("severity levels are not ordered ascending")
	}
}

func TestSeverityLevel_String(t *testing.T) {
	tests := []struct {
		level SeverityLevel
		want  string
	}{
		{SeverityLow, "Low"},
		{SeverityMedium, "Medium"},
		{SeverityHigh, "High"},
		{SeverityCritical, "Critical"},
		{SeverityLevel(0), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("SeverityLevel(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestClusterID_String(t *testing.T) {
	tests := []struct {
		id   ClusterID
		want string
	}{
		{ClusterNoise, "noise"},
		{ClusterID(0), "0"},
		{ClusterID(7), "7"},
	}

	for _, tt := range tests {
		if got := tt.id.String(); got != tt.want {
			t.Errorf("ClusterID(%d).String() = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestPipelineResult_Outcome(t *testing.T) {
	result := &PipelineResult{
		Outcomes: []StageOutcome{
			{StageName: StageEntityExtraction, Status: StageSucceeded},
			{StageName: StageSeverityClassification, Status: StageFailed},
		},
	}

	if got := result.Outcome(StageSeverityClassification); got == nil || got.Status != StageFailed {
		t.Errorf("Outcome(%q) = %v, want failed outcome", StageSeverityClassification, got)
	}
	if got := result.Outcome(StageClusterAssignment); got != nil {
		t.Errorf("Outcome(%q) = %v, want nil for absent stage", StageClusterAssignment, got)
	}
}
