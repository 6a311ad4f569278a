package openai

import (
	"testing"

	"github.com/poiesic/matchmaker/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider_InvalidConfig(t *testing.T) {
	_, err := NewProvider(&ai.Config{EmbeddingHost: "http://localhost:11434", BatchSize: 8})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EmbeddingModel")

	_, err = NewEmbedder(&ai.Config{EmbeddingModel: "m", BatchSize: 8})
	require.Error(t, err)
}

func TestNewProvider_NoNetworkAtConstruction(t *testing.T) {
	cfg := ai.NewConfig(ai.WithEmbeddingHost("http://127.0.0.1:1"))

	provider, err := NewProvider(cfg)
	require.NoError(t, err)
	require.NotNil(t, provider.Embedder())
	assert.Equal(t, "http://127.0.0.1:1/v1", cfg.EmbeddingHost)
	assert.NoError(t, provider.Close())
}
