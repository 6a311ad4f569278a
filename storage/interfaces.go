package storage

import (
	"context"

	"github.com/poiesic/matchmaker/core"
)

// FeedbackStore is an append-only log of pair outcomes.
// Implementations must be thread-safe and support concurrent access.
type FeedbackStore interface {
	// AppendFeedback stores events in order. Events without an ID get a
	// generated one and events without RecordedAt are stamped with the
	// current time. Returns the stored events.
	AppendFeedback(ctx context.Context, events ...*core.FeedbackEvent) ([]*core.FeedbackEvent, error)

	// ListFeedback returns every stored event in append order.
	// The result is a snapshot; later appends are not visible in it.
	ListFeedback(ctx context.Context) ([]*core.FeedbackEvent, error)

	// CountFeedback returns the number of stored events.
	CountFeedback(ctx context.Context) (int, error)
}

// ModelStore persists versioned ranker models.
type ModelStore interface {
	// SaveModel stores a model under its Version.
	// Returns ErrDuplicateKey if the version already exists.
	SaveModel(ctx context.Context, model *core.RankerModel) error

	// LoadLatestModel returns the model with the highest version.
	// Returns ErrNotFound if no model has been saved.
	LoadLatestModel(ctx context.Context) (*core.RankerModel, error)

	// LoadModel returns a specific version.
	// Returns ErrNotFound if the version doesn't exist.
	LoadModel(ctx context.Context, version uint64) (*core.RankerModel, error)

	// ListVersions returns all stored versions in ascending order.
	ListVersions(ctx context.Context) ([]uint64, error)
}

// EmbeddingRepository persists embedding cache entries keyed by profile and text kind.
type EmbeddingRepository interface {
	// GetEmbedding returns the stored entry.
	// Returns ErrNotFound if none exists.
	GetEmbedding(ctx context.Context, profileID, kind string) (*core.CachedEmbedding, error)

	// PutEmbedding stores an entry, replacing any previous one for the same key.
	PutEmbedding(ctx context.Context, entry *core.CachedEmbedding) error

	// DeleteEmbeddings removes every entry for a profile. Deleting a profile
	// with no entries is not an error.
	DeleteEmbeddings(ctx context.Context, profileID string) error
}

// Stores aggregates the repositories behind one backend.
type Stores interface {
	Feedback() FeedbackStore
	Models() ModelStore
	Embeddings() EmbeddingRepository

	// Close closes the storage backend and releases resources.
	Close() error
}
