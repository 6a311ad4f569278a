package ranker

import (
	"math"
	"sort"

	"github.com/poiesic/matchmaker/core"
)

// DefaultNDCGCutoff is the rank cutoff used when recording a model's NDCG.
const DefaultNDCGCutoff = 10

// NDCG computes the mean NDCG@k of predictions over examples grouped by
// ProfileA. Groups with a single example or with no positive label are
// skipped. Returns 0 when no group qualifies.
func NDCG(examples []core.TrainingExample, predictions []float64, k int) float64 {
	if len(examples) != len(predictions) || k <= 0 {
		return 0
	}
	groups := make(map[string][]int)
	var order []string
	for i, ex := range examples {
		if _, ok := groups[ex.ProfileA]; !ok {
			order = append(order, ex.ProfileA)
		}
		groups[ex.ProfileA] = append(groups[ex.ProfileA], i)
	}

	var sum float64
	var n int
	for _, key := range order {
		idx := groups[key]
		if len(idx) < 2 {
			continue
		}
		byPred := append([]int(nil), idx...)
		sort.SliceStable(byPred, func(i, j int) bool {
			return predictions[byPred[i]] > predictions[byPred[j]]
		})
		byLabel := append([]int(nil), idx...)
		sort.SliceStable(byLabel, func(i, j int) bool {
			return examples[byLabel[i]].Label > examples[byLabel[j]].Label
		})
		ideal := dcg(examples, byLabel, k)
		if ideal == 0 {
			continue
		}
		sum += dcg(examples, byPred, k) / ideal
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func dcg(examples []core.TrainingExample, ranked []int, k int) float64 {
	var total float64
	for pos, i := range ranked {
		if pos >= k {
			break
		}
		gain := math.Pow(2, examples[i].Label) - 1
		total += gain / math.Log2(float64(pos)+2)
	}
	return total
}
