package badger

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/matchmaker/core"
	"github.com/poiesic/matchmaker/storage"
)

// EmbeddingRepository implements storage.EmbeddingRepository for BadgerDB.
type EmbeddingRepository struct {
	backend *Backend
}

var _ storage.EmbeddingRepository = (*EmbeddingRepository)(nil)

// NewEmbeddingRepository creates a new EmbeddingRepository.
func NewEmbeddingRepository(backend *Backend) *EmbeddingRepository {
	return &EmbeddingRepository{backend: backend}
}

// GetEmbedding returns the stored entry for (profileID, kind).
func (r *EmbeddingRepository) GetEmbedding(ctx context.Context, profileID, kind string) (*core.CachedEmbedding, error) {
	var entry *core.CachedEmbedding
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeEmbeddingKey(profileID, kind))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			entry, err = storage.UnmarshalCachedEmbedding(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// PutEmbedding stores an entry, replacing any previous one.
func (r *EmbeddingRepository) PutEmbedding(ctx context.Context, entry *core.CachedEmbedding) error {
	if entry == nil || entry.ProfileID == "" || entry.Kind == "" {
		return fmt.Errorf("%w: embedding entry needs profile id and kind", storage.ErrInvalidRecord)
	}
	if len(entry.ProfileID) > math.MaxUint16 {
		return fmt.Errorf("%w: profile id too long", storage.ErrInvalidRecord)
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeEmbeddingKey(entry.ProfileID, entry.Kind), storage.MarshalCachedEmbedding(entry)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// DeleteEmbeddings removes every entry for a profile.
func (r *EmbeddingRepository) DeleteEmbeddings(ctx context.Context, profileID string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		var keys [][]byte
		err := scanPrefix(tx, makeEmbeddingProfilePrefix(profileID), false, func(key, _ []byte) error {
			keys = append(keys, key)
			return nil
		})
		if err != nil {
			return err
		}
		for _, key := range keys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}
