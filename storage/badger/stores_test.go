package badger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/poiesic/matchmaker/core"
	"github.com/poiesic/matchmaker/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStores(t *testing.T) storage.Stores {
	t.Helper()
	stores, err := NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { stores.Close() })
	return stores
}

func TestFeedbackRepository_AppendAndList(t *testing.T) {
	ctx := context.Background()
	repo := newTestStores(t).Feedback()

	var events []*core.FeedbackEvent
	for i := 0; i < 12; i++ {
		events = append(events, &core.FeedbackEvent{
			ProfileA: fmt.Sprintf("m%d", i),
			ProfileB: "f1",
			Outcome:  core.OutcomeContactMade,
			Features: []float64{float64(i) / 12},
		})
	}
	stored, err := repo.AppendFeedback(ctx, events...)
	require.NoError(t, err)
	for _, e := range stored {
		assert.NotEmpty(t, e.ID)
		assert.False(t, e.RecordedAt.IsZero())
	}

	listed, err := repo.ListFeedback(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 12)
	for i, e := range listed {
		assert.Equal(t, fmt.Sprintf("m%d", i), e.ProfileA, "append order preserved")
	}

	count, err := repo.CountFeedback(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, count)
}

func TestFeedbackRepository_RejectsInvalid(t *testing.T) {
	ctx := context.Background()
	repo := newTestStores(t).Feedback()

	_, err := repo.AppendFeedback(ctx,
		&core.FeedbackEvent{ProfileA: "m1", ProfileB: "f1", Outcome: core.OutcomeMatched},
		&core.FeedbackEvent{ProfileA: "m1", ProfileB: "m1", Outcome: core.OutcomeMatched},
	)
	assert.ErrorIs(t, err, storage.ErrInvalidRecord)

	count, err := repo.CountFeedback(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count, "batch is all or nothing")
}

func TestModelRepository(t *testing.T) {
	ctx := context.Background()
	repo := newTestStores(t).Models()

	_, err := repo.LoadLatestModel(ctx)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	for _, v := range []uint64{1, 2, 10} {
		require.NoError(t, repo.SaveModel(ctx, &core.RankerModel{
			Version:   v,
			Schema:    []string{"semantic"},
			Weights:   []float64{float64(v)},
			TrainedAt: time.Now().UTC(),
		}))
	}

	latest, err := repo.LoadLatestModel(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), latest.Version)

	second, err := repo.LoadModel(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{2}, second.Weights)

	_, err = repo.LoadModel(ctx, 3)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	versions, err := repo.ListVersions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2, 10}, versions)

	err = repo.SaveModel(ctx, &core.RankerModel{Version: 2, Schema: []string{"semantic"}, Weights: []float64{0}})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	err = repo.SaveModel(ctx, &core.RankerModel{Version: 0})
	assert.ErrorIs(t, err, storage.ErrInvalidRecord)
}

func TestEmbeddingRepository(t *testing.T) {
	ctx := context.Background()
	repo := newTestStores(t).Embeddings()

	_, err := repo.GetEmbedding(ctx, "f1", "description")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	entry := &core.CachedEmbedding{
		ProfileID: "f1",
		Kind:      "description",
		Hash:      core.ContentHash("warm and curious"),
		Vector:    []float32{0.1, 0.2},
	}
	require.NoError(t, repo.PutEmbedding(ctx, entry))
	require.NoError(t, repo.PutEmbedding(ctx, &core.CachedEmbedding{ProfileID: "f1", Kind: "preference", Vector: []float32{1}}))
	require.NoError(t, repo.PutEmbedding(ctx, &core.CachedEmbedding{ProfileID: "f10", Kind: "description", Vector: []float32{1}}))

	got, err := repo.GetEmbedding(ctx, "f1", "description")
	require.NoError(t, err)
	assert.Equal(t, entry.Hash, got.Hash)
	assert.Equal(t, entry.Vector, got.Vector)

	require.NoError(t, repo.DeleteEmbeddings(ctx, "f1"))
	_, err = repo.GetEmbedding(ctx, "f1", "preference")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = repo.GetEmbedding(ctx, "f10", "description")
	assert.NoError(t, err, "other profiles are untouched")

	assert.ErrorIs(t, repo.PutEmbedding(ctx, &core.CachedEmbedding{Kind: "description"}), storage.ErrInvalidRecord)
}

func TestStores_CloseTwice(t *testing.T) {
	stores, err := NewMemoryStores()
	require.NoError(t, err)

	require.NoError(t, stores.Close())
	assert.ErrorIs(t, stores.Close(), storage.ErrStorageClosed)
}
