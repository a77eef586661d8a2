package vecmath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCosineIdentity(t *testing.T) {
	vecs := [][]float32{
		{1, 0, 0},
		{0.3, -0.7, 2.5},
		{1e-3, 1e-3, 1e-3, 1e-3},
	}
	for _, v := range vecs {
		score, err := Cosine(v, v)
		require.NoError(t, err)
		require.InDelta(t, 1.0, score, 1e-6)
	}
}

func TestCosineSymmetric(t *testing.T) {
	a := []float32{0.1, 0.9, -0.4, 2}
	b := []float32{1.5, -0.2, 0.3, 0.8}
	ab, err := Cosine(a, b)
	require.NoError(t, err)
	ba, err := Cosine(b, a)
	require.NoError(t, err)
	require.Equal(t, ab, ba)
	require.True(t, ab >= -1 && ab <= 1)
}

func TestCosineKnownValues(t *testing.T) {
	score, err := Cosine([]float32{1, 0}, []float32{0, 1})
	require.NoError(t, err)
	require.InDelta(t, 0, score, 1e-9)

	score, err = Cosine([]float32{1, 1}, []float32{-1, -1})
	require.NoError(t, err)
	require.InDelta(t, -1, score, 1e-9)

	score, err = Cosine([]float32{1, 0}, []float32{1, 1})
	require.NoError(t, err)
	require.InDelta(t, 1/math.Sqrt2, score, 1e-6)
}

func TestCosineZeroVector(t *testing.T) {
	_, err := Cosine([]float32{0, 0, 0}, []float32{1, 2, 3})
	require.ErrorIs(t, err, ErrDegenerateVector)

	_, err = Cosine([]float32{1, 2, 3}, []float32{0, 0, 0})
	require.ErrorIs(t, err, ErrDegenerateVector)

	_, err = Cosine([]float32{}, []float32{})
	require.ErrorIs(t, err, ErrDegenerateVector)
}

func TestCosineDimensionMismatch(t *testing.T) {
	_, err := Cosine([]float32{1, 2}, []float32{1, 2, 3})
	require.ErrorIs(t, err, ErrDimensionMismatch)
}
