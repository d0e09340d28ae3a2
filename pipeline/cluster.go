package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/ghanashyam9348/adeguard/cluster"
	"github.com/ghanashyam9348/adeguard/core"
	"github.com/ghanashyam9348/adeguard/registry"
)

// ClusterStage encodes the report text and places it in the similarity
// index. Optional: runs only when the submission requests clustering, and
// skips when the encoder capability is not ready.
type ClusterStage struct {
	registry *registry.Registry
	index    *cluster.SimilarityIndex
	timeout  time.Duration
	logger   *slog.Logger
}

// NewClusterStage creates the cluster assignment stage.
func NewClusterStage(reg *registry.Registry, index *cluster.SimilarityIndex, timeout time.Duration, logger *slog.Logger) *ClusterStage {
	if timeout <= 0 {
		timeout = DefaultStageTimeout
	}
	return &ClusterStage{
		registry: reg,
		index:    index,
		timeout:  timeout,
		logger:   logger.With("stage", core.StageClusterAssignment),
	}
}

// Name implements Stage.
func (s *ClusterStage) Name() string { return core.StageClusterAssignment }

// Timeout implements Stage.
func (s *ClusterStage) Timeout() time.Duration { return s.timeout }

// Run embeds the report and inserts it into the index. Identical text maps
// to the same content ID, so resubmissions land in the same index slot.
func (s *ClusterStage) Run(ctx context.Context, ex *Exchange) core.StageOutcome {
	encoder, err := s.registry.Encoder()
	if err != nil {
		s.logger.Warn("encoder unavailable, skipping", "err", err)
		return degradedOutcome(s.Name(), err)
	}

	vector, err := encoder.EmbedText(ctx, ex.Report.Text)
	if err != nil {
		return degradedOutcome(s.Name(), err)
	}

	assignment, err := s.index.Insert(ctx, ex.ReportID, vector)
	if err != nil {
		return degradedOutcome(s.Name(), err)
	}

	ex.Cluster = assignment
	return core.StageOutcome{
		Status:  core.StageSucceeded,
		Cluster: assignment,
	}
}
