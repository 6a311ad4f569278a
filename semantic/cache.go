// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package semantic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/poiesic/matchmaker/ai"
	"github.com/poiesic/matchmaker/core"
	"github.com/poiesic/matchmaker/storage"
	"golang.org/x/sync/singleflight"
)

// TextKind distinguishes the texts embedded for one profile.
type TextKind string

const (
	// KindDescription is the profile's self-description.
	KindDescription TextKind = "description"
	// KindPreference is the free text of the profile's preference criteria.
	KindPreference TextKind = "preference"
)

// DefaultComputeTimeout bounds a single embedding computation.
const DefaultComputeTimeout = 30 * time.Second

type cacheKey struct {
	profileID string
	kind      TextKind
}

func (k cacheKey) flight(hash string) string {
	return k.profileID + "\x00" + string(k.kind) + "\x00" + hash
}

type cacheEntry struct {
	hash       string
	vector     []float32
	computedAt time.Time
}

// CacheStats reports cache effectiveness counters.
type CacheStats struct {
	Hits    int64 // served from memory
	Loads   int64 // served from the persistent repository
	Misses  int64 // computed by the embedder
	Errors  int64 // embedder failures and rejected vectors
	Entries int
}

// EmbeddingCache memoizes embeddings per (profile, text kind).
//
// Reads are lock-free once an entry is populated. Concurrent misses for the
// same key and text share one embedder call. Concurrent writers of different
// texts for the same key race and the last writer wins; a later read with a
// different text hash recomputes.
type EmbeddingCache struct {
	embedder ai.Embedder
	repo     storage.EmbeddingRepository
	timeout  time.Duration
	now      func() time.Time
	logger   *slog.Logger

	entries sync.Map // cacheKey -> *cacheEntry
	group   singleflight.Group

	hits, loads, misses, errs atomic.Int64
}

// CacheOption configures an EmbeddingCache.
type CacheOption func(*EmbeddingCache) error

// WithRepository enables read-through and write-through persistence.
func WithRepository(repo storage.EmbeddingRepository) CacheOption {
	return func(c *EmbeddingCache) error {
		c.repo = repo
		return nil
	}
}

// WithComputeTimeout bounds each embedder call.
func WithComputeTimeout(d time.Duration) CacheOption {
	return func(c *EmbeddingCache) error {
		if d <= 0 {
			return fmt.Errorf("compute timeout must be positive, got %s", d)
		}
		c.timeout = d
		return nil
	}
}

// WithClock overrides the time source used for computedAt stamps.
func WithClock(now func() time.Time) CacheOption {
	return func(c *EmbeddingCache) error {
		c.now = now
		return nil
	}
}

// WithCacheLogger sets the logger for the cache.
func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(c *EmbeddingCache) error {
		c.logger = logger
		return nil
	}
}

// NewEmbeddingCache creates a cache in front of embedder.
func NewEmbeddingCache(embedder ai.Embedder, opts ...CacheOption) (*EmbeddingCache, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	c := &EmbeddingCache{
		embedder: embedder,
		timeout:  DefaultComputeTimeout,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.logger = c.logger.With("component", "embedding-cache")
	return c, nil
}

// Embedder returns the embedder behind the cache.
func (c *EmbeddingCache) Embedder() ai.Embedder {
	return c.embedder
}

// Get returns the embedding of text for (profileID, kind), computing it on a
// miss or when the cached entry was computed from different text.
func (c *EmbeddingCache) Get(ctx context.Context, profileID string, kind TextKind, text string) ([]float32, error) {
	return c.get(ctx, cacheKey{profileID: profileID, kind: kind}, text, true)
}

// GetText returns the embedding of text that belongs to no profile.
// Such entries are kept in memory only.
func (c *EmbeddingCache) GetText(ctx context.Context, text string) ([]float32, error) {
	return c.get(ctx, cacheKey{kind: TextKind("text:" + core.ContentHash(text))}, text, false)
}

// Lookup returns a cached vector only if it was computed from text.
func (c *EmbeddingCache) Lookup(profileID string, kind TextKind, text string) ([]float32, bool) {
	v, ok := c.entries.Load(cacheKey{profileID: profileID, kind: kind})
	if !ok {
		return nil, false
	}
	e := v.(*cacheEntry)
	if e.hash != core.ContentHash(text) {
		return nil, false
	}
	return e.vector, true
}

// Has reports whether a vector for text is available without calling the
// embedder. A matching persisted entry is loaded into memory.
func (c *EmbeddingCache) Has(ctx context.Context, profileID string, kind TextKind, text string) bool {
	if _, ok := c.Lookup(profileID, kind, text); ok {
		return true
	}
	if c.repo == nil {
		return false
	}
	_, ok := c.load(ctx, cacheKey{profileID: profileID, kind: kind}, core.ContentHash(text))
	return ok
}

// Put stores a precomputed vector for text, persisting it when a repository
// is configured.
func (c *EmbeddingCache) Put(ctx context.Context, profileID string, kind TextKind, text string, vector []float32) error {
	if err := checkVector(vector); err != nil {
		return err
	}
	key := cacheKey{profileID: profileID, kind: kind}
	entry := &cacheEntry{hash: core.ContentHash(text), vector: vector, computedAt: c.now()}
	c.entries.Store(key, entry)
	return c.persist(ctx, key, entry)
}

// Invalidate drops every entry of a profile from memory and the repository.
func (c *EmbeddingCache) Invalidate(ctx context.Context, profileID string) error {
	for _, kind := range []TextKind{KindDescription, KindPreference} {
		c.entries.Delete(cacheKey{profileID: profileID, kind: kind})
	}
	if c.repo == nil {
		return nil
	}
	return c.repo.DeleteEmbeddings(ctx, profileID)
}

// Stats returns a snapshot of the cache counters.
func (c *EmbeddingCache) Stats() CacheStats {
	n := 0
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return CacheStats{
		Hits:    c.hits.Load(),
		Loads:   c.loads.Load(),
		Misses:  c.misses.Load(),
		Errors:  c.errs.Load(),
		Entries: n,
	}
}

func (c *EmbeddingCache) get(ctx context.Context, key cacheKey, text string, persistent bool) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hash := core.ContentHash(text)
	if v, ok := c.entries.Load(key); ok {
		if e := v.(*cacheEntry); e.hash == hash {
			c.hits.Add(1)
			return e.vector, nil
		}
	}

	ch := c.group.DoChan(key.flight(hash), func() (any, error) {
		return c.fill(ctx, key, text, hash, persistent)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]float32), nil
	}
}

// fill runs once per in-flight (key, hash). It is detached from the
// caller's cancellation so that other waiters still receive the result.
func (c *EmbeddingCache) fill(ctx context.Context, key cacheKey, text, hash string, persistent bool) ([]float32, error) {
	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	if v, ok := c.entries.Load(key); ok {
		if e := v.(*cacheEntry); e.hash == hash {
			c.hits.Add(1)
			return e.vector, nil
		}
	}

	if persistent && c.repo != nil {
		if vec, ok := c.load(fctx, key, hash); ok {
			return vec, nil
		}
	}

	c.misses.Add(1)
	vec, err := c.embedder.EmbedText(fctx, text)
	if err != nil {
		c.errs.Add(1)
		return nil, fmt.Errorf("%w: %w", ErrEmbeddingFailed, err)
	}
	if err := checkVector(vec); err != nil {
		c.errs.Add(1)
		return nil, fmt.Errorf("%w: %w", ErrEmbeddingFailed, err)
	}

	entry := &cacheEntry{hash: hash, vector: vec, computedAt: c.now()}
	c.entries.Store(key, entry)
	if persistent {
		if err := c.persist(fctx, key, entry); err != nil {
			c.logger.Warn("failed to persist embedding", "profile", key.profileID, "kind", key.kind, "err", err)
		}
	}
	return vec, nil
}

func (c *EmbeddingCache) load(ctx context.Context, key cacheKey, hash string) ([]float32, bool) {
	stored, err := c.repo.GetEmbedding(ctx, key.profileID, string(key.kind))
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			c.logger.Warn("failed to load embedding", "profile", key.profileID, "kind", key.kind, "err", err)
		}
		return nil, false
	}
	if stored.Hash != hash || checkVector(stored.Vector) != nil {
		return nil, false
	}
	c.loads.Add(1)
	c.entries.Store(key, &cacheEntry{hash: stored.Hash, vector: stored.Vector, computedAt: stored.ComputedAt})
	return stored.Vector, true
}

func (c *EmbeddingCache) persist(ctx context.Context, key cacheKey, entry *cacheEntry) error {
	if c.repo == nil || key.profileID == "" {
		return nil
	}
	return c.repo.PutEmbedding(ctx, &core.CachedEmbedding{
		ProfileID:  key.profileID,
		Kind:       string(key.kind),
		Hash:       entry.hash,
		Vector:     entry.vector,
		ComputedAt: entry.computedAt,
	})
}
