package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghanashyam9348/adeguard/core"
)

func TestIDRoundTrip(t *testing.T) {
	id := core.IDFromContent("patient developed a rash after amoxicillin")

	got, err := UnmarshalID(MarshalID(id))
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestEmbeddingRecordRoundTrip(t *testing.T) {
	record := &core.EmbeddingRecord{
		Id:         42,
		Vector:     []float32{0.25, -0.5, 0.75, 0.125},
		InsertedAt: time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC),
	}

	got, err := UnmarshalEmbeddingRecord(MarshalEmbeddingRecord(record))
	require.NoError(t, err)
	assert.Equal(t, record, got)
}

func TestAssignmentRecordRoundTrip(t *testing.T) {
	record := &core.AssignmentRecord{
		Id:               7,
		ClusterID:        int(core.ClusterNoise),
		EmbeddingVersion: 3,
		AssignedAt:       time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
		Similarity:       0.91,
	}

	got, err := UnmarshalAssignmentRecord(MarshalAssignmentRecord(record))
	require.NoError(t, err)
	assert.Equal(t, record, got)
}

func TestIndexMetaRoundTrip(t *testing.T) {
	meta := &core.IndexMeta{
		EmbeddingVersion: 12,
		ReclusteredAt:    time.Date(2025, 7, 15, 3, 0, 0, 0, time.UTC),
	}

	got, err := UnmarshalIndexMeta(MarshalIndexMeta(meta))
	require.NoError(t, err)
	assert.Equal(t, meta, got)
}

func TestUnmarshalTruncatedData(t *testing.T) {
	record := &core.EmbeddingRecord{
		Id:         1,
		Vector:     []float32{0.1, 0.2},
		InsertedAt: time.Now().UTC(),
	}
	data := MarshalEmbeddingRecord(record)

	_, err := UnmarshalEmbeddingRecord(data[:len(data)-3])
	assert.Error(t, err)
}
