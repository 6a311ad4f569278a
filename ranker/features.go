package ranker

import (
	"math"

	"github.com/poiesic/matchmaker/core"
)

// Feature names beyond the five composite factors.
const (
	FeatureEducation = "education"
	FeatureLanguage  = "language"
	FeatureSmoking   = "smoking"
)

// Schema is the ordered feature layout every model is trained and served on:
// the five composite components followed by the raw auxiliary sub-scores.
var Schema = []string{
	"semantic",
	"religious",
	"age",
	"geo",
	"auxiliary",
	FeatureEducation,
	FeatureLanguage,
	FeatureSmoking,
}

// FeatureVector extracts the Schema-ordered features of a scored pair.
func FeatureVector(sp *core.ScoredPair) []float64 {
	c := sp.Components
	return []float64{
		c.Semantic,
		c.Religious,
		c.Age,
		c.Geo,
		c.Auxiliary,
		sp.Auxiliary.Education,
		sp.Auxiliary.Language,
		sp.Auxiliary.Smoking,
	}
}

// Examples derives training examples from feedback. Events whose feature
// vector does not match Schema are skipped and counted.
func Examples(events []*core.FeedbackEvent) (examples []core.TrainingExample, skipped int) {
	for _, e := range events {
		if e == nil || len(e.Features) != len(Schema) || !finite(e.Features) {
			skipped++
			continue
		}
		features := make([]float64, len(e.Features))
		copy(features, e.Features)
		examples = append(examples, core.TrainingExample{
			ProfileA: e.ProfileA,
			Features: features,
			Label:    e.Outcome.Label(),
		})
	}
	return examples, skipped
}

func finite(fs []float64) bool {
	for _, f := range fs {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
