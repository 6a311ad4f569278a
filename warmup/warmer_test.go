package warmup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/matchmaker/ai/mock"
	"github.com/poiesic/matchmaker/core"
	"github.com/poiesic/matchmaker/semantic"
	"github.com/poiesic/matchmaker/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func population(n int) ([]*core.Profile, map[string]*core.PreferenceCriteria) {
	profiles := make([]*core.Profile, n)
	criteria := make(map[string]*core.PreferenceCriteria, n)
	for i := range profiles {
		id := fmt.Sprintf("p%02d", i)
		profiles[i] = &core.Profile{ID: id, Description: fmt.Sprintf("profile %d enjoys learning", i)}
		if i%2 == 0 {
			criteria[id] = &core.PreferenceCriteria{ProfileID: id, FreeText: fmt.Sprintf("someone kind %d", i)}
		}
	}
	return profiles, criteria
}

func fastConfig(batch int) *Config {
	return &Config{BatchSize: batch, ReportInterval: 1, MaxRetries: 3, RetryDelay: time.Millisecond}
}

func TestWarmer_FillsCacheInBatches(t *testing.T) {
	ctx := context.Background()
	embedder := mock.NewMockEmbedder()
	embedder.Dimensions = 16
	cache, err := semantic.NewEmbeddingCache(embedder)
	require.NoError(t, err)

	var progress bytes.Buffer
	w, err := NewWarmer(cache, fastConfig(4), &progress, nil)
	require.NoError(t, err)

	profiles, criteria := population(10)
	report, err := w.Run(ctx, profiles, criteria)
	require.NoError(t, err)

	assert.Equal(t, 15, report.Texts)
	assert.Equal(t, 0, report.Cached)
	assert.Equal(t, 15, report.Computed)
	assert.Equal(t, 4, report.Batches)
	assert.Equal(t, 4, embedder.CallCount())
	assert.Contains(t, progress.String(), "15/15")

	for _, p := range profiles {
		_, ok := cache.Lookup(p.ID, semantic.KindDescription, p.Description)
		assert.True(t, ok, p.ID)
	}
	_, ok := cache.Lookup("p00", semantic.KindPreference, criteria["p00"].FreeText)
	assert.True(t, ok)

	// A second run finds everything cached.
	again, err := w.Run(ctx, profiles, criteria)
	require.NoError(t, err)
	assert.Equal(t, 15, again.Cached)
	assert.Zero(t, again.Computed)
	assert.Equal(t, 4, embedder.CallCount())
}

func TestWarmer_SkipsPersistedEntries(t *testing.T) {
	ctx := context.Background()
	stores, err := badger.NewMemoryStores()
	require.NoError(t, err)
	defer stores.Close()

	profiles, criteria := population(6)

	first, err := semantic.NewEmbeddingCache(mock.NewMockEmbedder(), semantic.WithRepository(stores.Embeddings()))
	require.NoError(t, err)
	w, err := NewWarmer(first, fastConfig(8), nil, nil)
	require.NoError(t, err)
	_, err = w.Run(ctx, profiles, criteria)
	require.NoError(t, err)

	embedder := mock.NewMockEmbedder()
	fresh, err := semantic.NewEmbeddingCache(embedder, semantic.WithRepository(stores.Embeddings()))
	require.NoError(t, err)
	w, err = NewWarmer(fresh, fastConfig(8), nil, nil)
	require.NoError(t, err)

	report, err := w.Run(ctx, profiles, criteria)
	require.NoError(t, err)
	assert.Equal(t, 9, report.Cached)
	assert.Zero(t, embedder.CallCount())
}

func TestWarmer_RetriesTransientFailures(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	var attempts atomic.Int32
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		if attempts.Add(1) == 1 {
			return nil, errors.New("provider overloaded")
		}
		out := make([][]float32, len(texts))
		for i := range texts {
			out[i] = []float32{1, 0, 0}
		}
		return out, nil
	}
	cache, err := semantic.NewEmbeddingCache(embedder)
	require.NoError(t, err)
	w, err := NewWarmer(cache, fastConfig(10), nil, nil)
	require.NoError(t, err)

	profiles, _ := population(3)
	report, err := w.Run(context.Background(), profiles, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Computed)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestWarmer_FailsAfterRetries(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("provider down")
	}
	cache, err := semantic.NewEmbeddingCache(embedder)
	require.NoError(t, err)
	w, err := NewWarmer(cache, fastConfig(10), nil, nil)
	require.NoError(t, err)

	profiles, _ := population(2)
	_, err = w.Run(context.Background(), profiles, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider down")
	assert.Equal(t, 3, embedder.CallCount())
}

func TestWarmer_CountsRejectedVectors(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i := range texts {
			if i == 0 {
				out[i] = []float32{} // empty vectors are refused by the cache
				continue
			}
			out[i] = []float32{0, 1}
		}
		return out, nil
	}
	cache, err := semantic.NewEmbeddingCache(embedder)
	require.NoError(t, err)
	w, err := NewWarmer(cache, fastConfig(10), nil, nil)
	require.NoError(t, err)

	profiles, _ := population(3)
	report, err := w.Run(context.Background(), profiles, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Rejected)
	assert.Equal(t, 2, report.Computed)
}

func TestWarmer_CountMismatch(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1}}, nil
	}
	cache, err := semantic.NewEmbeddingCache(embedder)
	require.NoError(t, err)
	w, err := NewWarmer(cache, fastConfig(10), nil, nil)
	require.NoError(t, err)

	profiles, _ := population(2)
	_, err = w.Run(context.Background(), profiles, nil)
	assert.ErrorContains(t, err, "count mismatch")
}

func TestNewWarmer_Validation(t *testing.T) {
	_, err := NewWarmer(nil, nil, nil, nil)
	assert.ErrorIs(t, err, ErrCacheRequired)

	cache, err := semantic.NewEmbeddingCache(mock.NewMockEmbedder())
	require.NoError(t, err)
	_, err = NewWarmer(cache, &Config{BatchSize: 0, MaxRetries: 1}, nil, nil)
	assert.Error(t, err)
	_, err = NewWarmer(cache, &Config{BatchSize: 1, MaxRetries: 0}, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
}
