package mock

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEmbedder_Deterministic(t *testing.T) {
	m := NewMockEmbedder()
	ctx := context.Background()

	a, err := m.EmbedText(ctx, "loves learning")
	require.NoError(t, err)
	b, err := m.EmbedText(ctx, "loves learning")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, DefaultDimensions)

	var norm float64
	for _, v := range a {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-4)
	assert.Equal(t, 2, m.CallCount())
	assert.Equal(t, 2, m.TextCount("loves learning"))
}

func TestMockEmbedder_BatchMatchesSingle(t *testing.T) {
	m := NewMockEmbedder()
	m.Dimensions = 16
	ctx := context.Background()

	batch, err := m.EmbedTexts(ctx, []string{"a", "b"})
	require.NoError(t, err)
	single, err := m.EmbedText(ctx, "b")
	require.NoError(t, err)

	assert.Equal(t, single, batch[1])
	assert.Len(t, single, 16)
}

func TestMockEmbedder_CancelledContext(t *testing.T) {
	m := NewMockEmbedder()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.EmbedText(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMockEmbedder_ConcurrentUse(t *testing.T) {
	m := NewMockEmbedder()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.EmbedText(context.Background(), "same")
		}()
	}
	wg.Wait()

	assert.Equal(t, 32, m.CallCount())
	assert.Equal(t, 32, m.TextCount("same"))

	m.Reset()
	assert.Equal(t, 0, m.CallCount())
	assert.Equal(t, 0, m.TextCount("same"))
}
