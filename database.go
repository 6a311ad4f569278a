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


package matchmaker

import (
	"context"
	"io"
	"log/slog"

	"github.com/poiesic/matchmaker/ai"
	"github.com/poiesic/matchmaker/ai/openai"
	"github.com/poiesic/matchmaker/geo"
	"github.com/poiesic/matchmaker/semantic"
	"github.com/poiesic/matchmaker/storage"
	"github.com/poiesic/matchmaker/storage/badger"
	"github.com/poiesic/matchmaker/warmup"
)

// Database wires an Engine to persistent storage and an embedding provider.
type Database struct {
	stores   storage.Stores
	provider ai.Provider
	cache    *semantic.EmbeddingCache
	engine   *Engine
	logger   *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig   *ai.Config
	provider   ai.Provider
	resolver   geo.Resolver
	engineOpts []Option
	logger     *slog.Logger
}

// WithAIConfig sets the embedding provider configuration.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = config
	}
}

// WithProvider uses an existing provider instead of creating one from the
// AI config. The Database takes ownership and closes it.
func WithProvider(provider ai.Provider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithResolver replaces the default gazetteer.
func WithResolver(resolver geo.Resolver) DatabaseOption {
	return func(o *databaseOptions) {
		o.resolver = resolver
	}
}

// WithEngineOptions passes options to the Engine.
func WithEngineOptions(opts ...Option) DatabaseOption {
	return func(o *databaseOptions) {
		o.engineOpts = append(o.engineOpts, opts...)
	}
}

// WithDatabaseLogger sets the logger for the database and its engine.
func WithDatabaseLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		o.logger = logger
	}
}

// NewDatabase opens the store at filePath and serves the newest stored
// model, if any.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	logger := options.logger

	stores, err := badger.Open(filePath)
	if err != nil {
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			stores.Close()
			return nil, err
		}
	}

	closeAll := func() {
		provider.Close()
		stores.Close()
	}

	cache, err := semantic.NewEmbeddingCache(provider.Embedder(),
		semantic.WithRepository(stores.Embeddings()),
		semantic.WithCacheLogger(logger))
	if err != nil {
		closeAll()
		return nil, err
	}
	scorer, err := semantic.NewScorer(cache, semantic.WithLogger(logger))
	if err != nil {
		closeAll()
		return nil, err
	}

	resolver := options.resolver
	if resolver == nil {
		resolver, err = geo.NewGazetteer(geo.WithLogger(logger))
		if err != nil {
			closeAll()
			return nil, err
		}
	}

	engineOpts := append([]Option{
		WithLogger(logger),
		WithFeedbackStore(stores.Feedback()),
		WithModelStore(stores.Models()),
	}, options.engineOpts...)
	engine, err := NewEngine(scorer, resolver, engineOpts...)
	if err != nil {
		closeAll()
		return nil, err
	}
	if err := engine.LoadModel(context.Background()); err != nil {
		engine.Release()
		closeAll()
		return nil, err
	}

	return &Database{
		stores:   stores,
		provider: provider,
		cache:    cache,
		engine:   engine,
		logger:   logger,
	}, nil
}

// Close releases the engine, the provider and the storage backend.
func (db *Database) Close() error {
	db.engine.Release()

	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}
	if err := db.stores.Close(); err != nil {
		db.logger.Error("error closing storage", "err", err)
		return err
	}
	return nil
}

// Engine returns the matchmaking engine.
func (db *Database) Engine() *Engine {
	return db.engine
}

// Stores returns the underlying repositories.
func (db *Database) Stores() storage.Stores {
	return db.stores
}

// Cache returns the embedding cache shared by all scoring.
func (db *Database) Cache() *semantic.EmbeddingCache {
	return db.cache
}

// NewWarmer creates a warmer filling the database's embedding cache.
// progress may be nil.
func (db *Database) NewWarmer(config *warmup.Config, progress io.Writer) (*warmup.Warmer, error) {
	return warmup.NewWarmer(db.cache, config, progress, db.logger)
}
