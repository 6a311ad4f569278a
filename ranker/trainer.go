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
	"sync/atomic"
	"time"

	"github.com/poiesic/matchmaker/core"
	"github.com/poiesic/matchmaker/storage"
)

// DefaultMinExamples is the smallest feedback set a model is trained on.
const DefaultMinExamples = 20

// Trainer runs training jobs. At most one run is in flight at a time.
type Trainer struct {
	feedback    storage.FeedbackStore
	models      storage.ModelStore
	ranker      *Ranker
	fitter      Fitter
	minExamples int
	ndcgCutoff  int
	now         func() time.Time
	running     atomic.Bool
	logger      *slog.Logger
}

// TrainerOption configures a Trainer.
type TrainerOption func(*Trainer) error

// WithFitter replaces the default RidgeFitter.
func WithFitter(f Fitter) TrainerOption {
	return func(t *Trainer) error {
		if f == nil {
			return errors.New("fitter cannot be nil")
		}
		t.fitter = f
		return nil
	}
}

// WithMinExamples sets the minimum number of usable feedback events.
func WithMinExamples(n int) TrainerOption {
	return func(t *Trainer) error {
		if n < 2 {
			return fmt.Errorf("min examples must be at least 2, got %d", n)
		}
		t.minExamples = n
		return nil
	}
}

// WithNDCGCutoff sets k for the NDCG recorded on trained models.
func WithNDCGCutoff(k int) TrainerOption {
	return func(t *Trainer) error {
		if k <= 0 {
			return fmt.Errorf("ndcg cutoff must be positive, got %d", k)
		}
		t.ndcgCutoff = k
		return nil
	}
}

// WithClock overrides the time source used for TrainedAt.
func WithClock(now func() time.Time) TrainerOption {
	return func(t *Trainer) error {
		t.now = now
		return nil
	}
}

// WithTrainerLogger sets the logger.
func WithTrainerLogger(logger *slog.Logger) TrainerOption {
	return func(t *Trainer) error {
		t.logger = logger
		return nil
	}
}

// NewTrainer creates a Trainer that reads feedback, saves models and swaps
// them into r.
func NewTrainer(feedback storage.FeedbackStore, models storage.ModelStore, r *Ranker, opts ...TrainerOption) (*Trainer, error) {
	if feedback == nil {
		return nil, ErrFeedbackStoreRequired
	}
	if models == nil {
		return nil, ErrModelStoreRequired
	}
	if r == nil {
		return nil, ErrRankerRequired
	}
	t := &Trainer{
		feedback:    feedback,
		models:      models,
		ranker:      r,
		minExamples: DefaultMinExamples,
		ndcgCutoff:  DefaultNDCGCutoff,
		now:         time.Now,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}
	if t.fitter == nil {
		t.fitter = &RidgeFitter{Lambda: DefaultRidgeLambda, Logger: t.logger}
	}
	t.logger = t.logger.With("component", "trainer")
	return t, nil
}

// Running reports whether a training run is in flight.
func (t *Trainer) Running() bool { return t.running.Load() }

// Run trains a model on a snapshot of the feedback log. On success the model
// is saved under the next version and swapped into the ranker. On any error
// the served model is left unchanged.
func (t *Trainer) Run(ctx context.Context) (*core.RankerModel, error) {
	if !t.running.CompareAndSwap(false, true) {
		return nil, ErrTrainingInProgress
	}
	defer t.running.Store(false)

	start := time.Now()
	events, err := t.feedback.ListFeedback(ctx)
	if err != nil {
		return nil, fmt.Errorf("read feedback: %w", err)
	}
	examples, skipped := Examples(events)
	if skipped > 0 {
		t.logger.Warn("skipped malformed feedback", "count", skipped)
	}
	if len(examples) < t.minExamples {
		t.logger.Info("training skipped", "examples", len(examples), "required", t.minExamples)
		return nil, fmt.Errorf("%w: have %d examples, need %d", ErrInsufficientTrainingData, len(examples), t.minExamples)
	}

	model, err := t.fitter.Fit(ctx, examples, Schema)
	if err != nil {
		return nil, fmt.Errorf("fit model: %w", err)
	}
	if err := Validate(model, examples); err != nil {
		t.logger.Warn("trained model rejected", "error", err)
		if errors.Is(err, ErrModelValidation) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrModelValidation, err)
	}

	preds := make([]float64, len(examples))
	for i, ex := range examples {
		preds[i] = Predict(model, ex.Features)
	}
	model.NDCG = NDCG(examples, preds, t.ndcgCutoff)
	model.ExampleCount = len(examples)
	model.TrainedAt = t.now().UTC()

	version, err := t.nextVersion(ctx)
	if err != nil {
		return nil, err
	}
	model.Version = version
	if err := t.models.SaveModel(ctx, model); err != nil {
		return nil, fmt.Errorf("save model: %w", err)
	}
	if _, err := t.ranker.Swap(model); err != nil {
		return nil, err
	}

	t.logger.Info("training complete",
		"version", model.Version,
		"examples", model.ExampleCount,
		"rmse", model.TrainingRMSE,
		"ndcg", model.NDCG,
		"duration", time.Since(start))
	return model, nil
}

func (t *Trainer) nextVersion(ctx context.Context) (uint64, error) {
	var latest uint64
	m, err := t.models.LoadLatestModel(ctx)
	switch {
	case err == nil:
		latest = m.Version
	case errors.Is(err, storage.ErrNotFound):
	default:
		return 0, fmt.Errorf("load latest model: %w", err)
	}
	if served := t.ranker.Model(); served != nil && served.Version > latest {
		latest = served.Version
	}
	return latest + 1, nil
}
