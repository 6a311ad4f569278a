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


package warmup

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/matchmaker/core"
	"github.com/poiesic/matchmaker/semantic"
)

// Config holds configuration for a warmup run.
type Config struct {
	// BatchSize is the number of texts embedded per provider call
	BatchSize int

	// ReportInterval is how often to report progress (number of texts)
	ReportInterval int

	// MaxRetries is the maximum number of attempts per batch
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      32,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Report summarizes a warmup run.
type Report struct {
	Texts    int // candidate texts found in the population
	Cached   int // already available before the run
	Computed int // embedded and stored by the run
	Rejected int // returned by the provider but refused by the cache
	Batches  int
	Elapsed  time.Duration
}

// Warmer fills an embedding cache for a population.
type Warmer struct {
	cache     *semantic.EmbeddingCache
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	logger    *slog.Logger
}

// NewWarmer creates a warmer. progress receives the progress line and may be nil.
func NewWarmer(cache *semantic.EmbeddingCache, config *Config, progress io.Writer, logger *slog.Logger) (*Warmer, error) {
	if cache == nil {
		return nil, ErrCacheRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.BatchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", config.BatchSize)
	}
	if config.MaxRetries <= 0 {
		return nil, ErrInvalidMaxAttempts
	}
	if progress == nil {
		progress = io.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "warmup")

	return &Warmer{
		cache:     cache,
		config:    config,
		progress:  progress,
		processor: NewBatchProcessor(cache, config.MaxRetries, config.RetryDelay, logger),
		logger:    logger,
	}, nil
}

// Pending returns the texts of profiles and criteria that are not cached yet,
// in profile order with each description before its preference text.
func (w *Warmer) Pending(ctx context.Context, profiles []*core.Profile, criteria map[string]*core.PreferenceCriteria) (pending []Item, total int) {
	add := func(id string, kind semantic.TextKind, text string) {
		if strings.TrimSpace(text) == "" {
			return
		}
		total++
		if !w.cache.Has(ctx, id, kind, text) {
			pending = append(pending, Item{ProfileID: id, Kind: kind, Text: text})
		}
	}
	for _, p := range profiles {
		if p == nil {
			continue
		}
		add(p.ID, semantic.KindDescription, p.Description)
		if c := criteria[p.ID]; c != nil {
			add(p.ID, semantic.KindPreference, c.FreeText)
		}
	}
	return pending, total
}

// Run embeds every uncached description and preference text of the
// population. Progress is reported to the configured writer.
func (w *Warmer) Run(ctx context.Context, profiles []*core.Profile, criteria map[string]*core.PreferenceCriteria) (*Report, error) {
	start := time.Now()
	pending, total := w.Pending(ctx, profiles, criteria)
	report := &Report{Texts: total, Cached: total - len(pending)}

	if len(pending) == 0 {
		report.Elapsed = time.Since(start)
		w.logger.Info("nothing to warm", "texts", total)
		return report, nil
	}

	fmt.Fprintf(w.progress, "Warming %d of %d texts (batch size: %d)\n",
		len(pending), total, w.config.BatchSize)
	tracker := NewProgressTracker(w.progress, len(pending), w.config.ReportInterval)
	tracker.Start()

	for i := 0; i < len(pending); i += w.config.BatchSize {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		batch := pending[i:min(i+w.config.BatchSize, len(pending))]
		stored, rejected, err := w.processor.Process(ctx, batch)
		if err != nil {
			return report, fmt.Errorf("failed to process batch: %w", err)
		}
		report.Batches++
		report.Computed += stored
		report.Rejected += rejected
		tracker.Increment(len(batch))
	}

	tracker.Finish()
	report.Elapsed = time.Since(start)
	w.logger.Info("warmup complete",
		"texts", report.Texts,
		"cached", report.Cached,
		"computed", report.Computed,
		"rejected", report.Rejected,
		"batches", report.Batches,
		"elapsed", report.Elapsed)
	return report, nil
}
