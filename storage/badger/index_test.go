package badger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghanashyam9348/adeguard/core"
	"github.com/ghanashyam9348/adeguard/storage"
)

func newTestRepo(t *testing.T) storage.IndexRepository {
	t.Helper()

	repo, backend, err := NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})
	return repo
}

func TestAddAndGetEmbedding(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	record := &core.EmbeddingRecord{
		Id:     core.IDFromContent("fever after second dose"),
		Vector: []float32{0.5, 0.5, 0.5, 0.5},
	}
	require.NoError(t, repo.AddEmbeddings(ctx, record))
	assert.False(t, record.InsertedAt.IsZero(), "InsertedAt should be set on add")

	got, err := repo.GetEmbedding(ctx, record.Id)
	require.NoError(t, err)
	assert.Equal(t, record.Id, got.Id)
	assert.Equal(t, record.Vector, got.Vector)
}

func TestGetEmbeddingNotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetEmbedding(context.Background(), 9999)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestAddEmbeddingIsIdempotentForSameContent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id := core.IDFromContent("rash after amoxicillin")
	first := &core.EmbeddingRecord{Id: id, Vector: []float32{1, 0}}
	second := &core.EmbeddingRecord{Id: id, Vector: []float32{1, 0}}

	require.NoError(t, repo.AddEmbeddings(ctx, first))
	require.NoError(t, repo.AddEmbeddings(ctx, second))

	all, err := repo.AllEmbeddings(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAllEmbeddings(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		record := &core.EmbeddingRecord{
			Id:     core.ID(i),
			Vector: []float32{float32(i), 0},
		}
		require.NoError(t, repo.AddEmbeddings(ctx, record))
	}

	all, err := repo.AllEmbeddings(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestPutAndAllAssignments(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	records := []*core.AssignmentRecord{
		{Id: 1, ClusterID: 0, EmbeddingVersion: 1, AssignedAt: time.Now().UTC(), Similarity: 0.95},
		{Id: 2, ClusterID: int(core.ClusterNoise), EmbeddingVersion: 1, AssignedAt: time.Now().UTC()},
	}
	require.NoError(t, repo.PutAssignments(ctx, records...))

	all, err := repo.AllAssignments(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestReplaceAssignmentsSwapsTableAndMeta(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	old := []*core.AssignmentRecord{
		{Id: 1, ClusterID: 0, EmbeddingVersion: 1, AssignedAt: time.Now().UTC()},
		{Id: 2, ClusterID: 1, EmbeddingVersion: 1, AssignedAt: time.Now().UTC()},
		{Id: 3, ClusterID: int(core.ClusterNoise), EmbeddingVersion: 1, AssignedAt: time.Now().UTC()},
	}
	require.NoError(t, repo.PutAssignments(ctx, old...))
	require.NoError(t, repo.PutMeta(ctx, &core.IndexMeta{EmbeddingVersion: 1}))

	// Full recluster folds record 3 into cluster 0 under version 2.
	replacement := []*core.AssignmentRecord{
		{Id: 1, ClusterID: 0, EmbeddingVersion: 2, AssignedAt: time.Now().UTC()},
		{Id: 3, ClusterID: 0, EmbeddingVersion: 2, AssignedAt: time.Now().UTC()},
	}
	meta := &core.IndexMeta{EmbeddingVersion: 2, ReclusteredAt: time.Now().UTC()}
	require.NoError(t, repo.ReplaceAssignments(ctx, meta, replacement))

	all, err := repo.AllAssignments(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, record := range all {
		assert.Equal(t, 2, record.EmbeddingVersion)
	}

	gotMeta, err := repo.GetMeta(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, gotMeta.EmbeddingVersion)
}

func TestGetMetaNotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetMeta(context.Background())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPersistenceAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	backend, err := OpenBackend(dir, false)
	require.NoError(t, err)
	repo, err := NewIndexRepository(backend)
	require.NoError(t, err)

	record := &core.EmbeddingRecord{Id: 11, Vector: []float32{0.1, 0.9}}
	require.NoError(t, repo.AddEmbeddings(ctx, record))
	require.NoError(t, repo.PutMeta(ctx, &core.IndexMeta{EmbeddingVersion: 4}))
	require.NoError(t, repo.Close())
	require.NoError(t, backend.Close())

	backend, err = OpenBackend(dir, false)
	require.NoError(t, err)
	defer backend.Close()
	repo, err = NewIndexRepository(backend)
	require.NoError(t, err)
	defer repo.Close()

	got, err := repo.GetEmbedding(ctx, 11)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.9}, got.Vector)

	meta, err := repo.GetMeta(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, meta.EmbeddingVersion)
}
