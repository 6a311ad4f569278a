package ranker

import (
	"fmt"
	"math"
	"slices"

	"github.com/poiesic/matchmaker/core"
	"gonum.org/v1/gonum/stat"
)

// MinPredictionSpread is the smallest standard deviation of training-set
// predictions a model may have. Below it the model ranks everything alike.
const MinPredictionSpread = 1e-6

// Validate checks that a model can be served: its schema matches Schema, its
// parameters are finite and its predictions over examples are not constant.
func Validate(model *core.RankerModel, examples []core.TrainingExample) error {
	if err := checkModel(model); err != nil {
		return err
	}
	if len(examples) < 2 {
		return fmt.Errorf("%w: need at least 2 examples to measure spread", ErrModelValidation)
	}
	preds := make([]float64, len(examples))
	for i, ex := range examples {
		if len(ex.Features) != len(Schema) {
			return fmt.Errorf("%w: example %d", ErrSchemaMismatch, i)
		}
		preds[i] = Predict(model, ex.Features)
		if math.IsNaN(preds[i]) || math.IsInf(preds[i], 0) {
			return fmt.Errorf("%w: non-finite prediction for example %d", ErrModelValidation, i)
		}
	}
	if sd := stat.StdDev(preds, nil); !(sd > MinPredictionSpread) {
		return fmt.Errorf("%w: degenerate predictions (std dev %g)", ErrModelValidation, sd)
	}
	return nil
}

// checkModel covers the structural checks that do not need examples. It is
// also applied to models loaded from storage.
func checkModel(model *core.RankerModel) error {
	if model == nil {
		return fmt.Errorf("%w: nil model", ErrModelValidation)
	}
	if !slices.Equal(model.Schema, Schema) {
		return fmt.Errorf("%w: %w: %v", ErrModelValidation, ErrSchemaMismatch, model.Schema)
	}
	if len(model.Weights) != len(Schema) {
		return fmt.Errorf("%w: %d weights for %d features", ErrModelValidation, len(model.Weights), len(Schema))
	}
	if !finite(model.Weights) || !finite([]float64{model.Bias}) {
		return fmt.Errorf("%w: non-finite parameters", ErrModelValidation)
	}
	return nil
}
