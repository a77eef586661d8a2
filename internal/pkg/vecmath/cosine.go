package vecmath

import (
	"errors"
	"math"
)

var (
	ErrDegenerateVector  = errors.New("degenerate vector: zero norm")
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// Cosine returns the cosine similarity of a and b in [-1, 1].
// Accumulation is done in float64 to keep long embeddings stable.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0, ErrDegenerateVector
	}
	score := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, ErrDegenerateVector
	}
	// rounding can push |score| a hair past 1
	if score > 1 {
		score = 1
	} else if score < -1 {
		score = -1
	}
	return score, nil
}
