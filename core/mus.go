package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the persisted index records. The record set is small
// and flat, so the serializers are written by hand rather than generated.

// IDMUS serializes report IDs.
var IDMUS = idMUS{}

type idMUS struct{}

func (idMUS) Marshal(id ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(id ID) int {
	return varint.Uint64.Size(uint64(id))
}

func (idMUS) Skip(bs []byte) (int, error) {
	return varint.Uint64.Skip(bs)
}

// Embedding vectors are fixed-width float32 slices.
var vectorMUS = ord.NewSliceSer[float32](raw.Float32)

// timeMUS stores timestamps as Unix microseconds.
var timeMUS = timeSer{}

type timeSer struct{}

func (timeSer) Marshal(t time.Time, bs []byte) int {
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func (timeSer) Unmarshal(bs []byte) (time.Time, int, error) {
	v, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(v).UTC(), n, nil
}

func (timeSer) Size(t time.Time) int {
	return varint.Int64.Size(t.UnixMicro())
}

func (timeSer) Skip(bs []byte) (int, error) {
	return varint.Int64.Skip(bs)
}

// EmbeddingRecordMUS serializes EmbeddingRecord values.
var EmbeddingRecordMUS = embeddingRecordMUS{}

type embeddingRecordMUS struct{}

func (embeddingRecordMUS) Marshal(r EmbeddingRecord, bs []byte) (n int) {
	n = IDMUS.Marshal(r.Id, bs)
	n += vectorMUS.Marshal(r.Vector, bs[n:])
	n += timeMUS.Marshal(r.InsertedAt, bs[n:])
	return n
}

func (embeddingRecordMUS) Unmarshal(bs []byte) (r EmbeddingRecord, n int, err error) {
	var n1 int
	r.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return r, n, err
	}
	r.Vector, n1, err = vectorMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return r, n, err
	}
	r.InsertedAt, n1, err = timeMUS.Unmarshal(bs[n:])
	n += n1
	return r, n, err
}

func (embeddingRecordMUS) Size(r EmbeddingRecord) int {
	return IDMUS.Size(r.Id) + vectorMUS.Size(r.Vector) + timeMUS.Size(r.InsertedAt)
}

// AssignmentRecordMUS serializes AssignmentRecord values.
var AssignmentRecordMUS = assignmentRecordMUS{}

type assignmentRecordMUS struct{}

func (assignmentRecordMUS) Marshal(r AssignmentRecord, bs []byte) (n int) {
	n = IDMUS.Marshal(r.Id, bs)
	n += varint.Int.Marshal(r.ClusterID, bs[n:])
	n += varint.Int.Marshal(r.EmbeddingVersion, bs[n:])
	n += timeMUS.Marshal(r.AssignedAt, bs[n:])
	n += raw.Float32.Marshal(r.Similarity, bs[n:])
	return n
}

func (assignmentRecordMUS) Unmarshal(bs []byte) (r AssignmentRecord, n int, err error) {
	var n1 int
	r.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return r, n, err
	}
	r.ClusterID, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return r, n, err
	}
	r.EmbeddingVersion, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return r, n, err
	}
	r.AssignedAt, n1, err = timeMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return r, n, err
	}
	r.Similarity, n1, err = raw.Float32.Unmarshal(bs[n:])
	n += n1
	return r, n, err
}

func (assignmentRecordMUS) Size(r AssignmentRecord) int {
	return IDMUS.Size(r.Id) +
		varint.Int.Size(r.ClusterID) +
		varint.Int.Size(r.EmbeddingVersion) +
		timeMUS.Size(r.AssignedAt) +
		raw.Float32.Size(r.Similarity)
}

// IndexMetaMUS serializes IndexMeta values.
var IndexMetaMUS = indexMetaMUS{}

type indexMetaMUS struct{}

func (indexMetaMUS) Marshal(m IndexMeta, bs []byte) (n int) {
	n = varint.Int.Marshal(m.EmbeddingVersion, bs)
	n += timeMUS.Marshal(m.ReclusteredAt, bs[n:])
	return n
}

func (indexMetaMUS) Unmarshal(bs []byte) (m IndexMeta, n int, err error) {
	var n1 int
	m.EmbeddingVersion, n, err = varint.Int.Unmarshal(bs)
	if err != nil {
		return m, n, err
	}
	m.ReclusteredAt, n1, err = timeMUS.Unmarshal(bs[n:])
	n += n1
	return m, n, err
}

func (indexMetaMUS) Size(m IndexMeta) int {
	return varint.Int.Size(m.EmbeddingVersion) + timeMUS.Size(m.ReclusteredAt)
}
