package cluster

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghanashyam9348/adeguard/core"
	"github.com/ghanashyam9348/adeguard/storage"
	badgerstore "github.com/ghanashyam9348/adeguard/storage/badger"
)

func newTestIndex(t *testing.T, opts ...Option) *SimilarityIndex {
	t.Helper()

	idx, err := NewSimilarityIndex(opts...)
	require.NoError(t, err)
	return idx
}

func TestInsertIntoEmptyIndexIsNoise(t *testing.T) {
	idx := newTestIndex(t)

	assignment, err := idx.Insert(context.Background(), 1, []float32{1, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, core.ClusterNoise, assignment.ClusterID)
	assert.Equal(t, 1, assignment.EmbeddingVersion)
	assert.Equal(t, "noise", assignment.ClusterID.String())
}

func TestInsertEmptyVector(t *testing.T) {
	idx := newTestIndex(t)

	_, err := idx.Insert(context.Background(), 1, nil)
	assert.ErrorIs(t, err, ErrEmptyVector)
}

func TestReclusterGroupsSimilarReports(t *testing.T) {
	idx := newTestIndex(t, WithDensityThreshold(0.9))
	ctx := context.Background()

	_, err := idx.Insert(ctx, 1, []float32{1, 0, 0})
	require.NoError(t, err)
	_, err = idx.Insert(ctx, 2, []float32{0.99, 0.14, 0})
	require.NoError(t, err)
	_, err = idx.Insert(ctx, 3, []float32{0, 0, 1})
	require.NoError(t, err)

	require.NoError(t, idx.Recluster(ctx))
	assert.Equal(t, 2, idx.EmbeddingVersion())

	a1, err := idx.Assignment(1)
	require.NoError(t, err)
	a2, err := idx.Assignment(2)
	require.NoError(t, err)
	a3, err := idx.Assignment(3)
	require.NoError(t, err)

	assert.Equal(t, a1.ClusterID, a2.ClusterID)
	assert.NotEqual(t, noise, a1.ClusterID)
	assert.Equal(t, noise, a3.ClusterID)
	assert.Equal(t, 2, a1.EmbeddingVersion)
	assert.Positive(t, a1.Similarity)
}

func TestInsertAfterReclusterJoinsExistingCluster(t *testing.T) {
	idx := newTestIndex(t, WithDensityThreshold(0.9))
	ctx := context.Background()

	_, err := idx.Insert(ctx, 1, []float32{1, 0, 0})
	require.NoError(t, err)
	_, err = idx.Insert(ctx, 2, []float32{0.99, 0.14, 0})
	require.NoError(t, err)
	require.NoError(t, idx.Recluster(ctx))

	assignment, err := idx.Insert(ctx, 3, []float32{0.99, 0.1, 0})
	require.NoError(t, err)

	a1, err := idx.Assignment(1)
	require.NoError(t, err)
	assert.Equal(t, core.ClusterID(a1.ClusterID), assignment.ClusterID)
	assert.Positive(t, assignment.Similarity)
}

func TestInsertStabilityWithinVersion(t *testing.T) {
	idx := newTestIndex(t, WithDensityThreshold(0.9))
	ctx := context.Background()

	_, err := idx.Insert(ctx, 1, []float32{1, 0})
	require.NoError(t, err)
	_, err = idx.Insert(ctx, 2, []float32{0.99, 0.14})
	require.NoError(t, err)
	require.NoError(t, idx.Recluster(ctx))

	first, err := idx.Insert(ctx, 10, []float32{0.98, 0.15})
	require.NoError(t, err)
	second, err := idx.Insert(ctx, 10, []float32{0.98, 0.15})
	require.NoError(t, err)

	assert.Equal(t, first.ClusterID, second.ClusterID)
	assert.Equal(t, first.EmbeddingVersion, second.EmbeddingVersion)
	assert.Equal(t, first.Similarity, second.Similarity)
}

func TestAssignDoesNotMutate(t *testing.T) {
	idx := newTestIndex(t)

	assignment, err := idx.Assign([]float32{1, 0})
	require.NoError(t, err)
	assert.Equal(t, core.ClusterNoise, assignment.ClusterID)

	embeddings, clusters, pending := idx.Stats()
	assert.Zero(t, embeddings)
	assert.Zero(t, clusters)
	assert.Zero(t, pending)
}

func TestReclusterDrainsNoiseQueue(t *testing.T) {
	idx := newTestIndex(t, WithDensityThreshold(0.9))
	ctx := context.Background()

	_, err := idx.Insert(ctx, 1, []float32{1, 0})
	require.NoError(t, err)
	_, err = idx.Insert(ctx, 2, []float32{0.99, 0.14})
	require.NoError(t, err)

	_, _, pending := idx.Stats()
	assert.Equal(t, 2, pending)

	require.NoError(t, idx.Recluster(ctx))

	_, _, pending = idx.Stats()
	assert.Zero(t, pending)
}

func TestIndexPersistenceRoundTrip(t *testing.T) {
	repo, backend, err := badgerstore.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})

	ctx := context.Background()
	idx := newTestIndex(t, WithDensityThreshold(0.9), WithRepository(repo))

	_, err = idx.Insert(ctx, 1, []float32{1, 0, 0})
	require.NoError(t, err)
	_, err = idx.Insert(ctx, 2, []float32{0.99, 0.14, 0})
	require.NoError(t, err)
	require.NoError(t, idx.Recluster(ctx))

	// A second index over the same repository sees the reclustered state.
	restored := newTestIndex(t, WithDensityThreshold(0.9), WithRepository(repo))
	require.NoError(t, restored.Load(ctx))

	assert.Equal(t, idx.EmbeddingVersion(), restored.EmbeddingVersion())

	want, err := idx.Assignment(1)
	require.NoError(t, err)
	got, err := restored.Assignment(1)
	require.NoError(t, err)
	assert.Equal(t, want.ClusterID, got.ClusterID)
	assert.Equal(t, want.EmbeddingVersion, got.EmbeddingVersion)

	embeddings, clusters, _ := restored.Stats()
	assert.Equal(t, 2, embeddings)
	assert.Equal(t, 1, clusters)
}

// failingRepository wraps a real repository and forces AddEmbeddings to
// error.
type failingRepository struct {
	storage.IndexRepository
	addErr error
}

func (r *failingRepository) AddEmbeddings(ctx context.Context, records ...*core.EmbeddingRecord) error {
	if r.addErr != nil {
		return r.addErr
	}
	return r.IndexRepository.AddEmbeddings(ctx, records...)
}

func TestInsertStorageFailureLeavesIndexUnchanged(t *testing.T) {
	repo, backend, err := badgerstore.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})

	failing := &failingRepository{IndexRepository: repo, addErr: errors.New("disk full")}
	idx := newTestIndex(t, WithRepository(failing))

	_, err = idx.Insert(context.Background(), 1, []float32{1, 0})
	require.Error(t, err)

	embeddings, _, pending := idx.Stats()
	assert.Zero(t, embeddings)
	assert.Zero(t, pending)
	_, err = idx.Assignment(1)
	assert.ErrorIs(t, err, ErrUnknownID)

	// The same insert goes through once storage recovers.
	failing.addErr = nil
	_, err = idx.Insert(context.Background(), 1, []float32{1, 0})
	require.NoError(t, err)

	embeddings, _, pending = idx.Stats()
	assert.Equal(t, 1, embeddings)
	assert.Equal(t, 1, pending)
}

func TestUnknownAssignment(t *testing.T) {
	idx := newTestIndex(t)

	_, err := idx.Assignment(404)
	assert.ErrorIs(t, err, ErrUnknownID)
}
