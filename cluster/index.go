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

package cluster

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ghanashyam9348/adeguard/core"
	"github.com/ghanashyam9348/adeguard/storage"
)

const (
	// DefaultDensityThreshold is the cosine similarity at or above which
	// two embeddings count as neighbors.
	DefaultDensityThreshold = 0.80

	// DefaultMinClusterSize is the minimum neighborhood size (the point
	// itself included) for a core point.
	DefaultMinClusterSize = 2
)

// SimilarityIndex assigns report embeddings to clusters of similar events.
//
// Between full recluster passes the cluster cores are frozen: Insert matches
// the new embedding against the cores of the current embedding version, and
// embeddings matching no core are parked as noise until the next recluster.
// Concurrency follows a readers-writer discipline: queries take the read
// lock, Insert takes the write lock, Recluster holds it exclusively for the
// whole pass.
type SimilarityIndex struct {
	densityThreshold float32
	minClusterSize   int
	repo             storage.IndexRepository
	logger           *slog.Logger

	mu          sync.RWMutex
	vectors     map[core.ID][]float32
	assignments map[core.ID]core.AssignmentRecord
	cores       map[int][]float32
	version     int
	pending     []core.ID // noise since the last recluster
}

// Option configures a SimilarityIndex.
type Option func(*SimilarityIndex) error

// WithDensityThreshold sets the neighbor similarity threshold.
// Default is DefaultDensityThreshold.
func WithDensityThreshold(threshold float32) Option {
	return func(idx *SimilarityIndex) error {
		if threshold <= 0 || threshold > 1 {
			return errors.New("density threshold must be in (0, 1]")
		}
		idx.densityThreshold = threshold
		return nil
	}
}

// WithMinClusterSize sets the minimum neighborhood size for a core point.
// Default is DefaultMinClusterSize.
func WithMinClusterSize(size int) Option {
	return func(idx *SimilarityIndex) error {
		if size < 1 {
			size = 1
		}
		idx.minClusterSize = size
		return nil
	}
}

// WithRepository sets the persistence backend. Without one the index is
// memory-only.
func WithRepository(repo storage.IndexRepository) Option {
	return func(idx *SimilarityIndex) error {
		idx.repo = repo
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(idx *SimilarityIndex) error {
		if logger == nil {
			logger = slog.Default()
		}
		idx.logger = logger.With("component", "similarity-index")
		return nil
	}
}

// NewSimilarityIndex creates an empty index at embedding version 1.
func NewSimilarityIndex(opts ...Option) (*SimilarityIndex, error) {
	idx := &SimilarityIndex{
		densityThreshold: DefaultDensityThreshold,
		minClusterSize:   DefaultMinClusterSize,
		logger:           slog.Default().With("component", "similarity-index"),
		vectors:          make(map[core.ID][]float32),
		assignments:      make(map[core.ID]core.AssignmentRecord),
		cores:            make(map[int][]float32),
		version:          1,
	}

	for _, opt := range opts {
		if err := opt(idx); err != nil {
			return nil, err
		}
	}

	return idx, nil
}

// Load restores the index from its repository. A missing metadata record
// means the index has never been persisted and leaves the fresh state as is.
func (idx *SimilarityIndex) Load(ctx context.Context) error {
	if idx.repo == nil {
		return nil
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	meta, err := idx.repo.GetMeta(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	embeddings, err := idx.repo.AllEmbeddings(ctx)
	if err != nil {
		return err
	}
	assignments, err := idx.repo.AllAssignments(ctx)
	if err != nil {
		return err
	}

	idx.version = meta.EmbeddingVersion
	idx.vectors = make(map[core.ID][]float32, len(embeddings))
	for _, record := range embeddings {
		idx.vectors[record.Id] = record.Vector
	}

	idx.assignments = make(map[core.ID]core.AssignmentRecord, len(assignments))
	idx.pending = nil
	clustered := make(map[core.ID]int, len(assignments))
	for _, record := range assignments {
		idx.assignments[record.Id] = *record
		if record.ClusterID == noise {
			idx.pending = append(idx.pending, record.Id)
		} else {
			clustered[record.Id] = record.ClusterID
		}
	}
	idx.cores = clusterCores(idx.vectors, clustered)

	idx.logger.Info("index restored",
		"version", idx.version,
		"embeddings", len(idx.vectors),
		"clusters", len(idx.cores),
		"pending", len(idx.pending))
	return nil
}

// Insert adds an embedding and assigns it against the current cluster
// cores. The embedding is normalized before matching. An embedding that
// matches no core becomes noise and is queued for the next recluster.
// Re-inserting an identical embedding under the same version yields the
// same cluster id.
func (idx *SimilarityIndex) Insert(ctx context.Context, id core.ID, vector []float32) (*core.ClusterAssignment, error) {
	if len(vector) == 0 {
		return nil, ErrEmptyVector
	}
	normalized := Normalize(vector)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	clusterID, similarity := idx.nearestCore(normalized)

	record := core.AssignmentRecord{
		Id:               id,
		ClusterID:        clusterID,
		EmbeddingVersion: idx.version,
		AssignedAt:       time.Now().UTC(),
		Similarity:       similarity,
	}

	// Persist before touching in-memory state so a storage error leaves
	// the index exactly as it was.
	if idx.repo != nil {
		embedding := &core.EmbeddingRecord{Id: id, Vector: normalized}
		if err := idx.repo.AddEmbeddings(ctx, embedding); err != nil {
			return nil, err
		}
		if err := idx.repo.PutAssignments(ctx, &record); err != nil {
			return nil, err
		}
	}

	_, seen := idx.vectors[id]
	idx.vectors[id] = normalized
	idx.assignments[id] = record
	if clusterID == noise && !seen {
		idx.pending = append(idx.pending, id)
	}

	return &core.ClusterAssignment{
		ClusterID:        core.ClusterID(clusterID),
		EmbeddingVersion: idx.version,
		AssignedAt:       record.AssignedAt,
		Similarity:       similarity,
	}, nil
}

// Assign matches a vector against the current cluster cores without
// mutating the index.
func (idx *SimilarityIndex) Assign(vector []float32) (*core.ClusterAssignment, error) {
	if len(vector) == 0 {
		return nil, ErrEmptyVector
	}
	normalized := Normalize(vector)

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	clusterID, similarity := idx.nearestCore(normalized)
	return &core.ClusterAssignment{
		ClusterID:        core.ClusterID(clusterID),
		EmbeddingVersion: idx.version,
		AssignedAt:       time.Now().UTC(),
		Similarity:       similarity,
	}, nil
}

// Assignment returns the stored assignment for a report ID.
func (idx *SimilarityIndex) Assignment(id core.ID) (*core.AssignmentRecord, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	record, ok := idx.assignments[id]
	if !ok {
		return nil, ErrUnknownID
	}
	return &record, nil
}

// EmbeddingVersion returns the current embedding version.
func (idx *SimilarityIndex) EmbeddingVersion() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.version
}

// Stats reports current index counts for the health surface.
func (idx *SimilarityIndex) Stats() (embeddings, clusters, pending int) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.vectors), len(idx.cores), len(idx.pending)
}

// Recluster runs a full density pass over every stored embedding, bumps
// the embedding version, swaps the assignment table atomically, and drains
// the noise queue. Inserts block for the duration.
func (idx *SimilarityIndex) Recluster(ctx context.Context) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	start := time.Now()
	flat := densityCluster(idx.vectors, idx.densityThreshold, idx.minClusterSize)
	idx.version++

	now := time.Now().UTC()
	assignments := make(map[core.ID]core.AssignmentRecord, len(flat))
	records := make([]*core.AssignmentRecord, 0, len(flat))
	clustered := make(map[core.ID]int, len(flat))
	for id, clusterID := range flat {
		record := core.AssignmentRecord{
			Id:               id,
			ClusterID:        clusterID,
			EmbeddingVersion: idx.version,
			AssignedAt:       now,
		}
		assignments[id] = record
		records = append(records, &record)
		if clusterID != noise {
			clustered[id] = clusterID
		}
	}

	cores := clusterCores(idx.vectors, clustered)

	// Record each member's similarity to its own core.
	for id, clusterID := range clustered {
		record := assignments[id]
		record.Similarity = Cosine(idx.vectors[id], cores[clusterID])
		assignments[id] = record
	}
	for i, record := range records {
		records[i].Similarity = assignments[record.Id].Similarity
	}

	meta := &core.IndexMeta{EmbeddingVersion: idx.version, ReclusteredAt: now}
	if idx.repo != nil {
		if err := idx.repo.ReplaceAssignments(ctx, meta, records); err != nil {
			idx.version--
			return err
		}
	}

	idx.assignments = assignments
	idx.cores = cores
	idx.pending = nil

	idx.logger.Info("recluster complete",
		"version", idx.version,
		"embeddings", len(idx.vectors),
		"clusters", len(cores),
		"elapsed", time.Since(start))
	return nil
}

// nearestCore finds the cluster core most similar to the vector. Returns
// noise when no core clears the density threshold. Ties resolve to the
// lowest cluster id. Caller must hold at least the read lock.
func (idx *SimilarityIndex) nearestCore(vector []float32) (int, float32) {
	best := noise
	var bestSim float32
	for clusterID, coreVec := range idx.cores {
		sim := Cosine(vector, coreVec)
		if sim < idx.densityThreshold {
			continue
		}
		if best == noise || sim > bestSim || (sim == bestSim && clusterID < best) {
			best = clusterID
			bestSim = sim
		}
	}
	return best, bestSim
}
