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
	"log/slog"
	"strings"

	"github.com/poiesic/matchmaker/core"
)

// Neutral is the similarity reported when no meaningful comparison is possible.
const Neutral = 0.5

// Scorer computes semantic similarity between profiles.
type Scorer struct {
	cache  *EmbeddingCache
	logger *slog.Logger
}

// ScorerOption configures a Scorer.
type ScorerOption func(*Scorer) error

// WithLogger sets the logger for the scorer.
func WithLogger(logger *slog.Logger) ScorerOption {
	return func(s *Scorer) error {
		s.logger = logger
		return nil
	}
}

// NewScorer creates a scorer over cache.
func NewScorer(cache *EmbeddingCache, opts ...ScorerOption) (*Scorer, error) {
	if cache == nil {
		return nil, ErrCacheRequired
	}
	s := &Scorer{cache: cache}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("component", "semantic-scorer")
	return s, nil
}

// Cache returns the embedding cache behind the scorer.
func (s *Scorer) Cache() *EmbeddingCache {
	return s.cache
}

// Similarity returns the symmetric semantic score of a pair in [0, 1].
// Only context cancellation is returned as an error; every other failure
// degrades to Neutral for the affected direction.
func (s *Scorer) Similarity(ctx context.Context, a, b *core.Profile, critA, critB *core.PreferenceCriteria) (float64, error) {
	ab, err := s.direction(ctx, a, critA, b)
	if err != nil {
		return 0, err
	}
	ba, err := s.direction(ctx, b, critB, a)
	if err != nil {
		return 0, err
	}
	return (ab + ba) / 2, nil
}

// Directional returns d(a→b): how well a's preferences describe b.
func (s *Scorer) Directional(ctx context.Context, a *core.Profile, critA *core.PreferenceCriteria, b *core.Profile) (float64, error) {
	return s.direction(ctx, a, critA, b)
}

// TextSimilarity compares two free texts that belong to no profile.
func (s *Scorer) TextSimilarity(ctx context.Context, x, y string) (float64, error) {
	if isBlank(x) || isBlank(y) {
		return Neutral, nil
	}
	vx, err := s.cache.GetText(ctx, x)
	if err != nil {
		return s.degrade(ctx, err, "", "")
	}
	vy, err := s.cache.GetText(ctx, y)
	if err != nil {
		return s.degrade(ctx, err, "", "")
	}
	return s.compare(vx, vy, "", "")
}

func (s *Scorer) direction(ctx context.Context, a *core.Profile, critA *core.PreferenceCriteria, b *core.Profile) (float64, error) {
	if a == nil || b == nil {
		return Neutral, nil
	}
	kind, query := KindDescription, a.Description
	if critA != nil && !isBlank(critA.FreeText) {
		kind, query = KindPreference, critA.FreeText
	}
	if isBlank(query) || isBlank(b.Description) {
		return Neutral, nil
	}

	vq, err := s.cache.Get(ctx, a.ID, kind, query)
	if err != nil {
		return s.degrade(ctx, err, a.ID, b.ID)
	}
	vd, err := s.cache.Get(ctx, b.ID, KindDescription, b.Description)
	if err != nil {
		return s.degrade(ctx, err, a.ID, b.ID)
	}
	return s.compare(vq, vd, a.ID, b.ID)
}

func (s *Scorer) compare(x, y []float32, from, to string) (float64, error) {
	cos, err := Cosine(x, y)
	if err != nil {
		s.logger.Warn("similarity unavailable, using neutral score", "from", from, "to", to, "err", err)
		return Neutral, nil
	}
	return Similarity(cos), nil
}

// degrade turns a dependency failure into Neutral unless the caller was
// cancelled or the provider reported cancellation.
func (s *Scorer) degrade(ctx context.Context, err error, from, to string) (float64, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return 0, ctxErr
	}
	if errors.Is(err, context.Canceled) {
		return 0, err
	}
	s.logger.Warn("embedding unavailable, using neutral score", "from", from, "to", to, "err", err)
	return Neutral, nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
