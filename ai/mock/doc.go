// Package mock provides test doubles for the ai package interfaces.
//
// The mocks let scoring and matching tests run without a model server and
// give deterministic vectors: identical text always embeds to the same unit
// vector, so identical texts have cosine similarity 1.
//
// # Usage in Tests
//
//	embedder := mock.NewMockEmbedder()
//	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return nil, errors.New("model unavailable")
//	}
//
//	count := embedder.CallCount()
//	perText := embedder.TextCount("likes hiking")
package mock
