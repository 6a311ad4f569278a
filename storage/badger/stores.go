package badger

import (
	"errors"

	"github.com/poiesic/matchmaker/storage"
)

// Stores implements storage.Stores over a single BadgerDB backend.
type Stores struct {
	backend    *Backend
	feedback   *FeedbackRepository
	models     *ModelRepository
	embeddings *EmbeddingRepository
}

var _ storage.Stores = (*Stores)(nil)

// NewStores creates all repositories on an open backend.
// Closing the returned Stores closes the backend.
func NewStores(backend *Backend) (*Stores, error) {
	feedback, err := NewFeedbackRepository(backend)
	if err != nil {
		return nil, err
	}
	return &Stores{
		backend:    backend,
		feedback:   feedback,
		models:     NewModelRepository(backend),
		embeddings: NewEmbeddingRepository(backend),
	}, nil
}

// Open opens (or creates) a BadgerDB database at path and returns its stores.
//
// Returns storage.Stores interface to keep callers independent of BadgerDB.
func Open(path string) (storage.Stores, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	stores, err := NewStores(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return stores, nil
}

// Feedback returns the feedback log.
func (s *Stores) Feedback() storage.FeedbackStore { return s.feedback }

// Models returns the model store.
func (s *Stores) Models() storage.ModelStore { return s.models }

// Embeddings returns the embedding repository.
func (s *Stores) Embeddings() storage.EmbeddingRepository { return s.embeddings }

// Close releases the feedback sequence and closes the backend.
func (s *Stores) Close() error {
	if s.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return errors.Join(s.feedback.Close(), s.backend.Close())
}
