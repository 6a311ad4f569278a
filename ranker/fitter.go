package ranker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/poiesic/matchmaker/core"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// DefaultRidgeLambda is the L2 penalty applied by RidgeFitter when none is set.
const DefaultRidgeLambda = 1.0

// Fitter produces a model from training examples laid out per schema.
// The returned model carries Weights, Bias, ExampleCount and TrainingRMSE;
// the Trainer assigns Version, NDCG and TrainedAt.
type Fitter interface {
	Fit(ctx context.Context, examples []core.TrainingExample, schema []string) (*core.RankerModel, error)
}

// RidgeFitter fits an L2-regularised linear model by solving the normal
// equations (XᵀX + λI)w = Xᵀy. The bias term is not penalised.
type RidgeFitter struct {
	Lambda float64
	Logger *slog.Logger
}

var _ Fitter = (*RidgeFitter)(nil)

// Fit implements Fitter.
func (f *RidgeFitter) Fit(ctx context.Context, examples []core.TrainingExample, schema []string) (*core.RankerModel, error) {
	if len(examples) == 0 {
		return nil, ErrInsufficientTrainingData
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	lambda := f.Lambda
	if lambda <= 0 {
		lambda = DefaultRidgeLambda
	}

	d := len(schema)
	cols := d + 1 // trailing bias column
	x := mat.NewDense(len(examples), cols, nil)
	y := mat.NewVecDense(len(examples), nil)
	for i, ex := range examples {
		if len(ex.Features) != d {
			return nil, fmt.Errorf("%w: example %d has %d features, want %d", ErrSchemaMismatch, i, len(ex.Features), d)
		}
		for j, v := range ex.Features {
			x.Set(i, j, v)
		}
		x.Set(i, d, 1)
		y.SetVec(i, ex.Label)
	}

	var xtx mat.Dense
	xtx.Mul(x.T(), x)
	for j := 0; j < d; j++ {
		xtx.Set(j, j, xtx.At(j, j)+lambda)
	}
	var xty mat.VecDense
	xty.MulVec(x.T(), y)

	var w mat.VecDense
	if err := w.SolveVec(&xtx, &xty); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, fmt.Errorf("solve normal equations: %w", err)
		}
		if f.Logger != nil {
			f.Logger.Warn("ill-conditioned training matrix", "condition", float64(cond))
		}
	}

	weights := make([]float64, d)
	for j := range weights {
		weights[j] = w.AtVec(j)
	}
	model := &core.RankerModel{
		Schema:       append([]string(nil), schema...),
		Weights:      weights,
		Bias:         w.AtVec(d),
		ExampleCount: len(examples),
	}

	var sse float64
	for _, ex := range examples {
		r := Predict(model, ex.Features) - ex.Label
		sse += r * r
	}
	model.TrainingRMSE = math.Sqrt(sse / float64(len(examples)))
	return model, nil
}

// Predict returns the raw label-scale prediction of a model.
func Predict(model *core.RankerModel, features []float64) float64 {
	return floats.Dot(model.Weights, features) + model.Bias
}

// MaxLabel is the label of the best outcome; predictions are divided by it
// to land in [0, 1].
const MaxLabel = 5.0

// Normalized maps a label-scale prediction into [0, 1].
func Normalized(pred float64) float64 {
	v := pred / MaxLabel
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
