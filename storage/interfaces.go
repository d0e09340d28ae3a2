package storage

import (
	"context"

	"github.com/ghanashyam9348/adeguard/core"
)

// Repository provides common storage operations shared across repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// IndexRepository persists the similarity index: the append-only embedding
// table, the versioned assignment table, and the index metadata.
type IndexRepository interface {
	Repository

	// AddEmbeddings appends embedding records to the embedding table.
	// Sets InsertedAt if not already set. Re-adding an existing ID
	// overwrites it; identical content produces identical records.
	AddEmbeddings(ctx context.Context, records ...*core.EmbeddingRecord) error

	// GetEmbedding retrieves a single embedding record by ID.
	// Returns ErrNotFound if the record doesn't exist.
	GetEmbedding(ctx context.Context, id core.ID) (*core.EmbeddingRecord, error)

	// AllEmbeddings retrieves every embedding record.
	AllEmbeddings(ctx context.Context) ([]*core.EmbeddingRecord, error)

	// PutAssignments writes assignment records for the current version.
	PutAssignments(ctx context.Context, records ...*core.AssignmentRecord) error

	// AllAssignments retrieves every assignment record.
	AllAssignments(ctx context.Context) ([]*core.AssignmentRecord, error)

	// ReplaceAssignments atomically swaps the full assignment table and the
	// index metadata in one transaction. Used after a full recluster so
	// readers never observe a mix of versions.
	ReplaceAssignments(ctx context.Context, meta *core.IndexMeta, records []*core.AssignmentRecord) error

	// GetMeta retrieves the index metadata.
	// Returns ErrNotFound if the index has never been persisted.
	GetMeta(ctx context.Context) (*core.IndexMeta, error)

	// PutMeta writes the index metadata.
	PutMeta(ctx context.Context, meta *core.IndexMeta) error
}
