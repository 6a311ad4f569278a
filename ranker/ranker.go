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


package ranker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"

	"github.com/poiesic/matchmaker/core"
	"github.com/poiesic/matchmaker/storage"
)

// Mode selects how the final score of a pair is computed.
type Mode int

const (
	// ModeStatic uses the weighted composite total only.
	ModeStatic Mode = iota
	// ModeLearned uses the served model's normalized prediction.
	ModeLearned
	// ModeBlend mixes the two: (1-α)·static + α·learned.
	ModeBlend
)

func (m Mode) String() string {
	switch m {
	case ModeStatic:
		return "static"
	case ModeLearned:
		return "learned"
	case ModeBlend:
		return "blend"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode parses "static", "learned" or "blend".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "static", "":
		return ModeStatic, nil
	case "learned":
		return ModeLearned, nil
	case "blend":
		return ModeBlend, nil
	}
	return ModeStatic, fmt.Errorf("unknown ranker mode %q", s)
}

// DefaultBlend is the learned share used by ModeBlend when none is configured.
const DefaultBlend = 0.5

// Ranker serves the current model. It is safe for concurrent use; Swap and
// scoring may run at the same time.
type Ranker struct {
	model  atomic.Pointer[core.RankerModel]
	mode   Mode
	alpha  float64
	logger *slog.Logger
}

// Option configures a Ranker.
type Option func(*Ranker) error

// WithMode sets the scoring mode.
func WithMode(m Mode) Option {
	return func(r *Ranker) error {
		switch m {
		case ModeStatic, ModeLearned, ModeBlend:
			r.mode = m
			return nil
		}
		return fmt.Errorf("invalid ranker mode %d", int(m))
	}
}

// WithBlend selects ModeBlend with the given learned share.
func WithBlend(alpha float64) Option {
	return func(r *Ranker) error {
		if !(alpha >= 0 && alpha <= 1) {
			return fmt.Errorf("%w: %v", ErrInvalidBlend, alpha)
		}
		r.mode = ModeBlend
		r.alpha = alpha
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Ranker) error {
		r.logger = logger
		return nil
	}
}

// NewRanker creates a Ranker with no model loaded.
func NewRanker(opts ...Option) (*Ranker, error) {
	r := &Ranker{
		mode:   ModeStatic,
		alpha:  DefaultBlend,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	r.logger = r.logger.With("component", "ranker")
	return r, nil
}

// Mode returns the configured scoring mode.
func (r *Ranker) Mode() Mode { return r.mode }

// Model returns the served model, or nil.
func (r *Ranker) Model() *core.RankerModel { return r.model.Load() }

// Swap replaces the served model and returns the previous one. The model
// must pass the structural checks of Validate.
func (r *Ranker) Swap(model *core.RankerModel) (*core.RankerModel, error) {
	if err := checkModel(model); err != nil {
		return nil, err
	}
	old := r.model.Swap(model)
	r.logger.Info("model swapped", "version", model.Version, "examples", model.ExampleCount)
	return old, nil
}

// LoadLatest serves the newest stored model. An empty store leaves the
// ranker without a model and is not an error; a stored model that fails the
// structural checks is skipped with a warning.
func (r *Ranker) LoadLatest(ctx context.Context, store storage.ModelStore) error {
	model, err := store.LoadLatestModel(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		r.logger.Debug("no stored model")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load latest model: %w", err)
	}
	if _, err := r.Swap(model); err != nil {
		r.logger.Warn("stored model rejected", "version", model.Version, "error", err)
	}
	return nil
}

// Score returns the final score of a pair under the configured mode. Without
// a model the learned and blended modes fall back to the static total.
func (r *Ranker) Score(sp *core.ScoredPair) float64 {
	model := r.model.Load()
	if r.mode == ModeStatic || model == nil {
		return sp.Total
	}
	learned := Normalized(Predict(model, FeatureVector(sp)))
	if r.mode == ModeLearned {
		return learned
	}
	return (1-r.alpha)*sp.Total + r.alpha*learned
}

// Apply sets sp.Final from Score.
func (r *Ranker) Apply(sp *core.ScoredPair) {
	sp.Final = r.Score(sp)
}

// Rank applies the ranker to every pair and sorts by descending Final,
// breaking ties by ProfileB.
func (r *Ranker) Rank(pairs []*core.ScoredPair) {
	for _, sp := range pairs {
		r.Apply(sp)
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].Final != pairs[j].Final {
			return pairs[i].Final > pairs[j].Final
		}
		return pairs[i].ProfileB < pairs[j].ProfileB
	})
}
