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


package scoring

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/poiesic/matchmaker/core"
	"github.com/poiesic/matchmaker/geo"
)

var (
	// ErrSemanticRequired is returned when an Engine is created without a semantic scorer.
	ErrSemanticRequired = errors.New("semantic scorer is required")

	// ErrResolverRequired is returned when an Engine is created without a distance resolver.
	ErrResolverRequired = errors.New("distance resolver is required")
)

// Summary labels.
const (
	SummaryExcellent = "excellent"
	SummaryGood      = "good"
	SummaryFair      = "fair"
	SummaryWeak      = "weak"
)

// SemanticScorer computes the semantic factor of a pair.
type SemanticScorer interface {
	Similarity(ctx context.Context, a, b *core.Profile, critA, critB *core.PreferenceCriteria) (float64, error)
}

// Engine computes composite scores. It holds no per-pair state and is safe
// for concurrent use.
type Engine struct {
	semantic SemanticScorer
	resolver geo.Resolver
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets the logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		e.logger = logger
		return nil
	}
}

// NewEngine creates a scoring engine.
func NewEngine(semantic SemanticScorer, resolver geo.Resolver, opts ...Option) (*Engine, error) {
	if semantic == nil {
		return nil, ErrSemanticRequired
	}
	if resolver == nil {
		return nil, ErrResolverRequired
	}
	e := &Engine{semantic: semantic, resolver: resolver}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	e.logger = e.logger.With("component", "scoring-engine")
	return e, nil
}

// Score computes the composite score of (a, b). The result is symmetric in
// its components and total. Final starts equal to Total; a ranker may
// replace it. Only context cancellation is returned as an error.
func (e *Engine) Score(ctx context.Context, a *core.Profile, critA *core.PreferenceCriteria, b *core.Profile, critB *core.PreferenceCriteria) (*core.ScoredPair, error) {
	sem, err := e.semantic.Similarity(ctx, a, b, critA, critB)
	if err != nil {
		return nil, err
	}

	km := e.resolver.DistanceKm(a.Location, b.Location)
	aux := AuxiliaryFactors(a, critA, b, critB)
	gap := a.Age - b.Age
	if gap < 0 {
		gap = -gap
	}

	components := core.Components{
		Semantic:  clamp(sem),
		Religious: ReligiousCompatibility(a, b),
		Age:       AgeCompatibility(a.Age, b.Age),
		Geo:       GeoCompatibility(km),
		Auxiliary: Auxiliary(aux),
	}
	total := Total(components)

	e.logger.Debug("scored pair",
		"a", a.ID, "b", b.ID,
		"semantic", components.Semantic,
		"religious", components.Religious,
		"age", components.Age,
		"geo", components.Geo,
		"auxiliary", components.Auxiliary,
		"total", total)

	return &core.ScoredPair{
		ProfileA:    a.ID,
		ProfileB:    b.ID,
		Components:  components,
		Auxiliary:   aux,
		AgeGap:      gap,
		DistanceKm:  km,
		Total:       total,
		Final:       total,
		Explanation: Explain(components),
		Summary:     Summarize(total),
	}, nil
}

// Total returns the weighted composite of the components.
func Total(c core.Components) float64 {
	return clamp(WeightSemantic*c.Semantic +
		WeightReligious*c.Religious +
		WeightAge*c.Age +
		WeightGeo*c.Geo +
		WeightAuxiliary*c.Auxiliary)
}

// Explain lists each factor's contribution, largest first. Ties are broken by
// factor name. The contributions sum to Total(c).
func Explain(c core.Components) []core.Contribution {
	out := []core.Contribution{
		contribution(FactorSemantic, c.Semantic, WeightSemantic),
		contribution(FactorReligious, c.Religious, WeightReligious),
		contribution(FactorAge, c.Age, WeightAge),
		contribution(FactorGeo, c.Geo, WeightGeo),
		contribution(FactorAuxiliary, c.Auxiliary, WeightAuxiliary),
	}
	slices.SortFunc(out, func(x, y core.Contribution) int {
		if c := cmp.Compare(y.Contribution, x.Contribution); c != 0 {
			return c
		}
		return cmp.Compare(x.Factor, y.Factor)
	})
	return out
}

// Summarize labels a total score.
func Summarize(total float64) string {
	switch {
	case total >= 0.8:
		return SummaryExcellent
	case total >= 0.6:
		return SummaryGood
	case total >= 0.4:
		return SummaryFair
	default:
		return SummaryWeak
	}
}

func contribution(factor string, value, weight float64) core.Contribution {
	return core.Contribution{
		Factor:       factor,
		Value:        value,
		Weight:       weight,
		Contribution: value * weight,
	}
}

func clamp(v float64) float64 {
	if v != v || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
