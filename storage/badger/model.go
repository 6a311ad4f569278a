package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/matchmaker/core"
	"github.com/poiesic/matchmaker/storage"
)

// ModelRepository implements storage.ModelStore for BadgerDB.
type ModelRepository struct {
	backend *Backend
}

var _ storage.ModelStore = (*ModelRepository)(nil)

// NewModelRepository creates a new ModelRepository.
func NewModelRepository(backend *Backend) *ModelRepository {
	return &ModelRepository{backend: backend}
}

// SaveModel stores a model under its version. Versions are immutable.
func (r *ModelRepository) SaveModel(ctx context.Context, model *core.RankerModel) error {
	if model == nil || model.Version == 0 {
		return fmt.Errorf("%w: model version must be positive", storage.ErrInvalidRecord)
	}
	if len(model.Schema) != len(model.Weights) {
		return fmt.Errorf("%w: %d weights for %d features", storage.ErrInvalidRecord, len(model.Weights), len(model.Schema))
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeModelKey(model.Version)
		_, err := tx.Get(key)
		if err == nil {
			return fmt.Errorf("%w: model version %d", storage.ErrDuplicateKey, model.Version)
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := tx.Set(key, storage.MarshalRankerModel(model)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// LoadLatestModel returns the highest stored version.
func (r *ModelRepository) LoadLatestModel(ctx context.Context) (*core.RankerModel, error) {
	var model *core.RankerModel
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(modelPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		// seek past the largest possible version
		iter.Seek(makeModelKey(^uint64(0)))
		if !iter.Valid() {
			return storage.ErrNotFound
		}
		return iter.Item().Value(func(val []byte) error {
			var err error
			model, err = storage.UnmarshalRankerModel(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return model, nil
}

// LoadModel returns a specific version.
func (r *ModelRepository) LoadModel(ctx context.Context, version uint64) (*core.RankerModel, error) {
	var model *core.RankerModel
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeModelKey(version))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: model version %d", storage.ErrNotFound, version)
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			model, err = storage.UnmarshalRankerModel(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return model, nil
}

// ListVersions returns all stored versions in ascending order.
func (r *ModelRepository) ListVersions(ctx context.Context) ([]uint64, error) {
	var versions []uint64
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return scanPrefix(tx, []byte(modelPrefix), false, func(key, _ []byte) error {
			v, err := modelVersionFromKey(key)
			if err != nil {
				return err
			}
			versions = append(versions, v)
			return nil
		})
	}, false)
	return versions, err
}
