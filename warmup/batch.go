package warmup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/matchmaker/semantic"
)

// Item is one text to embed for a profile.
type Item struct {
	ProfileID string
	Kind      semantic.TextKind
	Text      string
}

// BatchProcessor embeds batches of texts and stores them in the cache.
type BatchProcessor struct {
	cache          *semantic.EmbeddingCache
	maxRetries     int
	retryBaseDelay time.Duration
	logger         *slog.Logger
}

// NewBatchProcessor creates a batch processor.
// maxRetries: maximum number of attempts per batch
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(cache *semantic.EmbeddingCache, maxRetries int, retryBaseDelay time.Duration, logger *slog.Logger) *BatchProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchProcessor{
		cache:          cache,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
		logger:         logger,
	}
}

// Process embeds items with one provider call and stores each vector.
// Vectors the cache rejects are logged and counted, not fatal.
// Returns the number of stored and rejected items.
func (bp *BatchProcessor) Process(ctx context.Context, items []Item) (stored, rejected int, err error) {
	if len(items) == 0 {
		return 0, 0, nil
	}

	texts := make([]string, len(items))
	for i, it := range items {
		texts[i] = it.Text
	}

	var vectors [][]float32
	err = RetryWithBackoff(ctx, func(ctx context.Context) error {
		var err error
		vectors, err = bp.cache.Embedder().EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to embed batch after %d attempts: %w", bp.maxRetries, err)
	}
	if len(vectors) != len(items) {
		return 0, 0, fmt.Errorf("embedding count mismatch: expected %d, got %d", len(items), len(vectors))
	}

	for i, it := range items {
		if err := bp.cache.Put(ctx, it.ProfileID, it.Kind, it.Text, vectors[i]); err != nil {
			bp.logger.Warn("embedding not cached", "profile", it.ProfileID, "kind", it.Kind, "err", err)
			rejected++
			continue
		}
		stored++
	}
	return stored, rejected, nil
}
