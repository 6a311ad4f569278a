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
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/matchmaker/constraint"
	"github.com/poiesic/matchmaker/core"
	"github.com/poiesic/matchmaker/geo"
	"github.com/poiesic/matchmaker/ranker"
	"github.com/poiesic/matchmaker/scoring"
	"github.com/poiesic/matchmaker/storage"
)

// Engine scores pairs, ranks candidates and computes stable matchings.
// It is safe for concurrent use. Call Release when done.
type Engine struct {
	filter    *constraint.Filter
	scorer    *scoring.Engine
	ranker    *ranker.Ranker
	trainer   *ranker.Trainer
	feedback  storage.FeedbackStore
	models    storage.ModelStore
	pool      *ants.Pool
	proposing core.Gender
	minScore  float64
	monitor   MatchMonitor
	logger    *slog.Logger

	rankerOpts  []ranker.Option
	trainerOpts []ranker.TrainerOption
}

// Option configures an Engine.
type Option func(*Engine) error

// WithPoolSize sets the worker pool size for population-wide scoring.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(e *Engine) error {
		if size < 1 {
			size = 1
		}
		if e.pool != nil {
			e.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		e.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithFeedbackStore enables RecordFeedback and, together with a model
// store, Train.
func WithFeedbackStore(store storage.FeedbackStore) Option {
	return func(e *Engine) error {
		e.feedback = store
		return nil
	}
}

// WithModelStore enables Train and LoadModel.
func WithModelStore(store storage.ModelStore) Option {
	return func(e *Engine) error {
		e.models = store
		return nil
	}
}

// WithRankerMode selects how final scores are computed. Default is static.
func WithRankerMode(mode ranker.Mode) Option {
	return func(e *Engine) error {
		e.rankerOpts = append(e.rankerOpts, ranker.WithMode(mode))
		return nil
	}
}

// WithBlend selects blended scoring with the given learned share.
func WithBlend(alpha float64) Option {
	return func(e *Engine) error {
		e.rankerOpts = append(e.rankerOpts, ranker.WithBlend(alpha))
		return nil
	}
}

// WithTrainerOptions passes options to the training job.
func WithTrainerOptions(opts ...ranker.TrainerOption) Option {
	return func(e *Engine) error {
		e.trainerOpts = append(e.trainerOpts, opts...)
		return nil
	}
}

// WithProposingGender selects the proposing side of stable matching.
// Default is male.
func WithProposingGender(g core.Gender) Option {
	return func(e *Engine) error {
		if g != core.GenderMale && g != core.GenderFemale {
			return fmt.Errorf("proposing gender must be male or female, got %s", g)
		}
		e.proposing = g
		return nil
	}
}

// WithMatchMinScore drops pairs scoring below min from preference lists.
// Default is 0.
func WithMatchMinScore(min float64) Option {
	return func(e *Engine) error {
		if min < 0 || min > 1 {
			return fmt.Errorf("match min score must be within [0, 1], got %v", min)
		}
		e.minScore = min
		return nil
	}
}

// WithMonitor installs hooks observing matching runs.
func WithMonitor(m MatchMonitor) Option {
	return func(e *Engine) error {
		if m == nil {
			m = &noopMonitor{}
		}
		e.monitor = m
		return nil
	}
}

// NewEngine creates an engine from a semantic scorer and a location resolver.
func NewEngine(semantic scoring.SemanticScorer, resolver geo.Resolver, opts ...Option) (*Engine, error) {
	if semantic == nil {
		return nil, ErrSemanticScorerRequired
	}
	if resolver == nil {
		return nil, ErrResolverRequired
	}

	e := &Engine{
		proposing: core.GenderMale,
		monitor:   &noopMonitor{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			e.Release()
			return nil, err
		}
	}
	if e.pool == nil {
		pool, err := ants.NewPool(max(runtime.NumCPU()/2, 1))
		if err != nil {
			return nil, err
		}
		e.pool = pool
	}

	var err error
	if e.filter, err = constraint.NewFilter(resolver, constraint.WithLogger(e.logger)); err != nil {
		e.Release()
		return nil, err
	}
	if e.scorer, err = scoring.NewEngine(semantic, resolver, scoring.WithLogger(e.logger)); err != nil {
		e.Release()
		return nil, err
	}
	if e.ranker, err = ranker.NewRanker(append(e.rankerOpts, ranker.WithLogger(e.logger))...); err != nil {
		e.Release()
		return nil, err
	}
	if e.feedback != nil && e.models != nil {
		opts := append([]ranker.TrainerOption{ranker.WithTrainerLogger(e.logger)}, e.trainerOpts...)
		if e.trainer, err = ranker.NewTrainer(e.feedback, e.models, e.ranker, opts...); err != nil {
			e.Release()
			return nil, err
		}
	}

	e.logger = e.logger.With("component", "engine")
	return e, nil
}

// Release releases the worker pool. The engine should not be used after calling Release.
func (e *Engine) Release() {
	if e.pool != nil {
		e.pool.Release()
	}
}

// Ranker returns the ranker serving final scores.
func (e *Engine) Ranker() *ranker.Ranker {
	return e.ranker
}

// Filter returns the constraint filter.
func (e *Engine) Filter() *constraint.Filter {
	return e.filter
}

// ScoreResult is the outcome of ScorePair: either a scored pair or the
// decision that excluded it.
type ScoreResult struct {
	Pair     *core.ScoredPair
	Excluded bool
	Decision constraint.Decision
}

// ScorePair filters and scores (a, b). Ineligible pairs are reported through
// ScoreResult.Excluded, not as an error. Invalid profiles or criteria return
// an error wrapping core.ErrInvalidProfile or core.ErrInvalidCriteria.
func (e *Engine) ScorePair(ctx context.Context, a *core.Profile, critA *core.PreferenceCriteria, b *core.Profile, critB *core.PreferenceCriteria) (*ScoreResult, error) {
	if err := validate(a, critA); err != nil {
		return nil, err
	}
	if err := validate(b, critB); err != nil {
		return nil, err
	}

	d := e.filter.Check(a, critA, b, critB)
	if !d.Eligible {
		e.logger.Debug("pair excluded", "a", a.ID, "b", b.ID, "predicate", d.Predicate, "side", d.Side)
		return &ScoreResult{Excluded: true, Decision: d}, nil
	}

	sp, err := e.scorer.Score(ctx, a, critA, b, critB)
	if err != nil {
		return nil, err
	}
	e.ranker.Apply(sp)
	return &ScoreResult{Pair: sp, Decision: d}, nil
}

// RankCandidates scores every eligible member of pool against query and
// returns them by descending final score, ties broken by candidate id.
// Pairs below minScore are dropped; topK <= 0 returns all. The query and
// every non-nil pool member are validated first, and any failure, including
// a repeated pool ID, is returned.
func (e *Engine) RankCandidates(ctx context.Context, query *core.Profile, pool []*core.Profile, criteria map[string]*core.PreferenceCriteria, topK int, minScore float64) ([]*core.ScoredPair, error) {
	if query == nil {
		return nil, fmt.Errorf("%w: query is nil", core.ErrInvalidProfile)
	}
	if err := validate(query, criteria[query.ID]); err != nil {
		return nil, err
	}
	valid, err := validatePopulation(pool, criteria)
	if err != nil {
		return nil, fmt.Errorf("candidate pool: %w", err)
	}

	eligible, excluded := e.filter.Eligible(query, criteria, valid)
	jobs := make([]pairJob, len(eligible))
	for i, c := range eligible {
		jobs[i] = pairJob{a: query, b: c}
	}
	pairs, err := e.scoreAll(ctx, jobs, criteria)
	if err != nil {
		return nil, err
	}

	e.ranker.Rank(pairs)
	out := pairs[:0]
	for _, sp := range pairs {
		if sp.Final >= minScore {
			out = append(out, sp)
		}
	}
	if topK > 0 && len(out) > topK {
		out = out[:topK]
	}

	e.logger.Debug("ranked candidates",
		"profile", query.ID,
		"pool", len(pool),
		"excluded", len(excluded),
		"returned", len(out))
	return out, nil
}

// RecordFeedback appends an outcome for a scored pair, capturing the pair's
// feature vector as training input.
func (e *Engine) RecordFeedback(ctx context.Context, pair *core.ScoredPair, outcome core.FeedbackOutcome, reason string) (*core.FeedbackEvent, error) {
	if e.feedback == nil {
		return nil, ErrFeedbackUnavailable
	}
	if pair == nil {
		return nil, ErrPairRequired
	}
	stored, err := e.feedback.AppendFeedback(ctx, &core.FeedbackEvent{
		ProfileA: pair.ProfileA,
		ProfileB: pair.ProfileB,
		Outcome:  outcome,
		Features: ranker.FeatureVector(pair),
		Reason:   reason,
	})
	if err != nil {
		return nil, err
	}
	e.logger.Info("feedback recorded", "a", pair.ProfileA, "b", pair.ProfileB, "outcome", outcome)
	return stored[0], nil
}

// Train runs one training job. See ranker.Trainer.Run.
func (e *Engine) Train(ctx context.Context) (*core.RankerModel, error) {
	if e.feedback == nil {
		return nil, ErrFeedbackUnavailable
	}
	if e.trainer == nil {
		return nil, ErrTrainingUnavailable
	}
	return e.trainer.Run(ctx)
}

// LoadModel serves the newest stored model, if any.
func (e *Engine) LoadModel(ctx context.Context) error {
	if e.models == nil {
		return ErrTrainingUnavailable
	}
	return e.ranker.LoadLatest(ctx, e.models)
}

type pairJob struct {
	a, b *core.Profile
}

// scoreAll scores jobs on the worker pool and returns the pairs in job
// order. The first error cancels the remaining work.
func (e *Engine) scoreAll(parent context.Context, jobs []pairJob, criteria map[string]*core.PreferenceCriteria) ([]*core.ScoredPair, error) {
	if len(jobs) == 0 {
		return nil, parent.Err()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	results := make([]*core.ScoredPair, len(jobs))
	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for i, job := range jobs {
		wg.Add(1)
		err := e.pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			sp, err := e.scorer.Score(ctx, job.a, criteria[job.a.ID], job.b, criteria[job.b.ID])
			if err != nil {
				fail(err)
				return
			}
			results[i] = sp
		})
		if err != nil {
			wg.Done()
			fail(fmt.Errorf("submit scoring job: %w", err))
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := parent.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func validate(p *core.Profile, c *core.PreferenceCriteria) error {
	if c == nil {
		return core.ValidateProfile(p)
	}
	return core.ValidatePair(p, c)
}

// validatePopulation checks every non-nil profile and its criteria, and
// rejects IDs that occur more than once. All failures are joined. On success
// it returns the profiles with nil entries dropped.
func validatePopulation(population []*core.Profile, criteria map[string]*core.PreferenceCriteria) ([]*core.Profile, error) {
	var errs []error
	seen := make(map[string]struct{}, len(population))
	out := make([]*core.Profile, 0, len(population))
	for _, p := range population {
		if p == nil {
			continue
		}
		if err := validate(p, criteria[p.ID]); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := seen[p.ID]; dup {
			errs = append(errs, fmt.Errorf("%w: %s: %w", core.ErrInvalidProfile, p.ID, core.ErrDuplicateProfile))
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}
