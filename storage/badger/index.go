package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/ghanashyam9348/adeguard/core"
	"github.com/ghanashyam9348/adeguard/storage"
)

// IndexRepository implements storage.IndexRepository for BadgerDB.
type IndexRepository struct {
	backend *Backend
}

var _ storage.IndexRepository = (*IndexRepository)(nil)

// NewIndexRepository creates a new IndexRepository.
func NewIndexRepository(backend *Backend) (*IndexRepository, error) {
	return &IndexRepository{
		backend: backend,
	}, nil
}

// Close releases resources. IndexRepository has no resources to release.
func (r *IndexRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *IndexRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddEmbeddings appends embedding records to the embedding table.
func (r *IndexRepository) AddEmbeddings(ctx context.Context, records ...*core.EmbeddingRecord) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, record := range records {
			if record.InsertedAt.IsZero() {
				record.InsertedAt = time.Now().UTC()
			}
			key := makeEmbeddingKey(record.Id)
			if err := tx.Set(key, storage.MarshalEmbeddingRecord(record)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetEmbedding retrieves a single embedding record by ID.
func (r *IndexRepository) GetEmbedding(ctx context.Context, id core.ID) (*core.EmbeddingRecord, error) {
	var result *core.EmbeddingRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeEmbeddingKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			result, err = storage.UnmarshalEmbeddingRecord(val)
			return err
		})
	}, false)
	return result, err
}

// AllEmbeddings retrieves every embedding record.
func (r *IndexRepository) AllEmbeddings(ctx context.Context) ([]*core.EmbeddingRecord, error) {
	var results []*core.EmbeddingRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(embeddingPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var record *core.EmbeddingRecord
			err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalEmbeddingRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			results = append(results, record)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// PutAssignments writes assignment records for the current version.
func (r *IndexRepository) PutAssignments(ctx context.Context, records ...*core.AssignmentRecord) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, record := range records {
			key := makeAssignmentKey(record.Id)
			if err := tx.Set(key, storage.MarshalAssignmentRecord(record)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// AllAssignments retrieves every assignment record.
func (r *IndexRepository) AllAssignments(ctx context.Context) ([]*core.AssignmentRecord, error) {
	var results []*core.AssignmentRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(assignmentPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var record *core.AssignmentRecord
			err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalAssignmentRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			results = append(results, record)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// ReplaceAssignments atomically swaps the full assignment table and the
// index metadata. Readers never observe a mix of embedding versions.
func (r *IndexRepository) ReplaceAssignments(ctx context.Context, meta *core.IndexMeta, records []*core.AssignmentRecord) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		// Collect existing assignment keys
		var stale [][]byte
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(assignmentPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		for iter.Rewind(); iter.Valid(); iter.Next() {
			stale = append(stale, iter.Item().KeyCopy(nil))
		}
		iter.Close()

		for _, key := range stale {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}

		for _, record := range records {
			key := makeAssignmentKey(record.Id)
			if err := tx.Set(key, storage.MarshalAssignmentRecord(record)); err != nil {
				return err
			}
		}

		if err := tx.Set(makeIndexMetaKey(), storage.MarshalIndexMeta(meta)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetMeta retrieves the index metadata.
func (r *IndexRepository) GetMeta(ctx context.Context) (*core.IndexMeta, error) {
	var result *core.IndexMeta
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeIndexMetaKey())
		if errors.Is(err, badger.ErrKeyNotFound) {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			result, err = storage.UnmarshalIndexMeta(val)
			return err
		})
	}, false)
	return result, err
}

// PutMeta writes the index metadata.
func (r *IndexRepository) PutMeta(ctx context.Context, meta *core.IndexMeta) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeIndexMetaKey(), storage.MarshalIndexMeta(meta)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
