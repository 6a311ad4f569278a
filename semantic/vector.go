package semantic

import (
	"fmt"
	"math"
)

// Cosine returns the cosine similarity of a and b in [-1, 1].
func Cosine(a, b []float32) (float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, ErrEmptyVector
	}
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if math.IsNaN(dot) || math.IsInf(dot, 0) || math.IsInf(normA, 0) || math.IsInf(normB, 0) {
		return 0, ErrNonFinite
	}
	if normA == 0 || normB == 0 {
		return 0, ErrZeroNorm
	}

	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(cos) {
		return 0, ErrNonFinite
	}
	return math.Max(-1, math.Min(1, cos)), nil
}

// Similarity maps a cosine value onto [0, 1].
func Similarity(cos float64) float64 {
	return math.Max(0, math.Min(1, (cos+1)/2))
}

// checkVector rejects vectors that must never enter the cache.
func checkVector(v []float32) error {
	if len(v) == 0 {
		return ErrEmptyVector
	}
	for _, f := range v {
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return ErrNonFinite
		}
	}
	return nil
}
