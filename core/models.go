package core

import (
	"encoding/binary"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
	"github.com/google/uuid"
)

// ID is a deterministic identifier for a processed report, derived from its
// text content. Identical report text always produces the same ID, which is
// what keeps cluster assignments stable across resubmissions.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// NewRequestID generates a unique identifier for a single submission.
// Unlike ID, request IDs are never reused, even for identical text.
func NewRequestID() string {
	return uuid.NewString()
}

// Flags selects the optional pipeline stages for a submission.
// Entity extraction and severity classification always run.
type Flags struct {
	IncludeClustering     bool
	IncludeExplainability bool
}

// Report is a single free-text pharmaceutical safety report.
// Immutable once submitted.
type Report struct {
	Text       string
	PatientAge *int // Optional, years
	Flags      Flags
}

// EntityType categorizes an extracted clinical entity.
type EntityType string

const (
	EntityDrug      EntityType = "DRUG"
	EntitySymptom   EntityType = "SYMPTOM"
	EntityCondition EntityType = "CONDITION"
	EntityDosage    EntityType = "DOSAGE"
)

// Entity is a typed span extracted from report text.
type Entity struct {
	Start       int
	End         int
	SurfaceText string
	Type        EntityType
	Confidence  float64 // In [0,1]
}

// SeverityLevel grades the clinical severity of an adverse event.
// Higher values are more severe; the ordering matters for tie-breaking.
type SeverityLevel int

const (
	SeverityLow SeverityLevel = iota + 1
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// String returns the human-readable severity label.
func (l SeverityLevel) String() string {
	switch l {
	case SeverityLow:
		return "Low"
	case SeverityMedium:
		return "Medium"
	case SeverityHigh:
		return "High"
	case SeverityCritical:
		return "Critical"
	default:
		return "Unknown"
	}
}

// SeverityLevels lists all levels in ascending order of severity.
var SeverityLevels = []SeverityLevel{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

// Classification method identifiers recorded on SeverityResult.
const (
	SeverityMethodModel     = "model"
	SeverityMethodHeuristic = "heuristic"
)

// SeverityResult is the outcome of severity classification.
type SeverityResult struct {
	Level             SeverityLevel
	Confidence        float64                   // In [0,1]
	Probabilities     map[SeverityLevel]float64 // Per-class probabilities, may be nil
	RationaleFeatures map[string]float64        // Optional feature->weight mapping
	Method            string                    // "model" or "heuristic"
}

// ClusterID identifies a similarity cluster. ClusterNoise marks reports that
// do not fall inside any dense region of the index.
type ClusterID int

// ClusterNoise is the sentinel for reports outside every cluster.
const ClusterNoise ClusterID = -1

// String renders the cluster ID, with noise spelled out.
func (c ClusterID) String() string {
	if c == ClusterNoise {
		return "noise"
	}
	return strconv.Itoa(int(c))
}

// ClusterAssignment places a report in the similarity index.
// Assignments are only comparable within a single EmbeddingVersion;
// a full recluster bumps the version and invalidates prior assignments.
type ClusterAssignment struct {
	ClusterID        ClusterID
	EmbeddingVersion int
	AssignedAt       time.Time
	Similarity       float32 // Cosine similarity to the nearest cluster core
}

// ExplanationMethod identifies the attribution technique used.
type ExplanationMethod string

const (
	ExplanationAdditive     ExplanationMethod = "additive"
	ExplanationPerturbation ExplanationMethod = "perturbation"
)

// FeatureWeight is one feature's contribution to the severity decision.
type FeatureWeight struct {
	Feature      string
	Contribution float64
	Sign         int // +1 pushes toward the predicted level, -1 away
}

// Explanation attributes the severity decision to input features.
// For the perturbation method, identical (text, model version, seed) must
// reproduce identical TopFeatures.
type Explanation struct {
	Method      ExplanationMethod
	TopFeatures []FeatureWeight
	Seed        int64
}

// Stage names as they appear in StageOutcome and PipelineResult.
const (
	StageEntityExtraction       = "entity_extraction"
	StageSeverityClassification = "severity_classification"
	StageClusterAssignment      = "cluster_assignment"
	StageExplainability         = "explainability"
)

// StageStatus is the terminal state of one pipeline stage.
type StageStatus string

const (
	StageSucceeded StageStatus = "succeeded"
	StageFailed    StageStatus = "failed"
	StageSkipped   StageStatus = "skipped"
	StageTimedOut  StageStatus = "timed_out"
)

// Error kinds recorded on failed or degraded stage outcomes.
const (
	ErrorKindValidation = "validation"
	ErrorKindCapability = "capability_unavailable"
	ErrorKindTimeout    = "timeout"
	ErrorKindInternal   = "internal"
)

// StageOutcome records what one stage produced. Exactly one payload field is
// populated for a succeeded stage, matching the stage that ran.
type StageOutcome struct {
	StageName string
	Status    StageStatus
	ErrorKind string // Why the stage degraded or fell back, empty otherwise
	Error     string // Empty on success
	Elapsed   time.Duration

	Entities    []Entity
	Truncated   bool // Input exceeded the token cap and was truncated
	Severity    *SeverityResult
	Cluster     *ClusterAssignment
	Explanation *Explanation
}

// OverallStatus summarizes a whole pipeline run.
type OverallStatus string

const (
	OverallSuccess OverallStatus = "success"
	OverallPartial OverallStatus = "partial"
	OverallFailed  OverallStatus = "failed"
)

// Summary is the high-level readout attached to every PipelineResult.
type Summary struct {
	SeverityLevel     SeverityLevel
	EntityCounts      map[EntityType]int
	TotalEntities     int
	RequiresAttention bool
}

// PipelineResult aggregates one StageOutcome per requested stage.
// Mandatory stages are always present; optional stages appear iff requested.
type PipelineResult struct {
	RequestID     string
	Outcomes      []StageOutcome
	OverallStatus OverallStatus
	ProcessedAt   time.Time
	Elapsed       time.Duration
	Summary       Summary
	Alerts        []string

	// Recommendations are clinical follow-up actions tiered by the
	// classified severity.
	Recommendations []string
}

// Outcome returns the outcome for the named stage, or nil if absent.
func (r *PipelineResult) Outcome(stageName string) *StageOutcome {
	for i := range r.Outcomes {
		if r.Outcomes[i].StageName == stageName {
			return &r.Outcomes[i]
		}
	}
	return nil
}

// Capability identifies one of the four inference capabilities.
type Capability string

const (
	CapabilityExtractor  Capability = "entity_extractor"
	CapabilityClassifier Capability = "severity_classifier"
	CapabilityEncoder    Capability = "similarity_encoder"
	CapabilityExplainer  Capability = "explainer"
)

// Capabilities lists all capabilities in load order.
var Capabilities = []Capability{
	CapabilityExtractor,
	CapabilityClassifier,
	CapabilityEncoder,
	CapabilityExplainer,
}

// CapabilityState is the lifecycle state of one capability.
type CapabilityState string

const (
	StateUnloaded CapabilityState = "unloaded"
	StateLoading  CapabilityState = "loading"
	StateReady    CapabilityState = "ready"
	StateFailed   CapabilityState = "failed"
)

// ModelStatus is a point-in-time snapshot of one capability's lifecycle.
type ModelStatus struct {
	State    CapabilityState
	Version  string
	LoadedAt time.Time
	Err      string // Last load error, empty unless State is failed
}

// BatchItem is one slot in a batch response. Exactly one of Result or Err is
// set; Err carries validation failures that kept the report out of the
// pipeline entirely.
type BatchItem struct {
	Result *PipelineResult
	Err    error
}

// BatchSummary counts terminal states across a batch. The three counts
// always sum to the batch size; validation failures count as failed.
type BatchSummary struct {
	SucceededCount int
	PartialCount   int
	FailedCount    int
}

// BatchResult is the index-aligned response for a batch submission.
type BatchResult struct {
	Items   []BatchItem
	Summary BatchSummary
}

// EmbeddingRecord is the persisted form of one report embedding.
// The embedding table is append-only.
type EmbeddingRecord struct {
	Id         ID
	Vector     []float32
	InsertedAt time.Time
}

// AssignmentRecord is the persisted form of one cluster assignment,
// tagged with the embedding version it belongs to.
type AssignmentRecord struct {
	Id               ID
	ClusterID        int
	EmbeddingVersion int
	AssignedAt       time.Time
	Similarity       float32
}

// IndexMeta tracks the current embedding version of the similarity index.
type IndexMeta struct {
	EmbeddingVersion int
	ReclusteredAt    time.Time
}
