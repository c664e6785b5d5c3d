package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalancedIndices(t *testing.T) {
	leaver := []float64{1, 0, 0, 0, 1, 0, 0, 0}

	got, err := BalancedIndices(leaver, 3, 42)
	require.NoError(t, err)

	// Both positives once, then ratio-times-as-many negative draws.
	require.Len(t, got, 2+2*3)
	assert.Equal(t, []int{0, 4}, got[:2])
	for _, idx := range got[2:] {
		assert.Equal(t, 0.0, leaver[idx], "oversampled rows must be negatives")
	}
}

func TestBalancedIndicesDeterministic(t *testing.T) {
	leaver := []float64{1, 0, 0, 0, 1, 0, 0, 0, 0, 1}

	first, err := BalancedIndices(leaver, 6, 7)
	require.NoError(t, err)
	second, err := BalancedIndices(leaver, 6, 7)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	other, err := BalancedIndices(leaver, 6, 8)
	require.NoError(t, err)
	assert.NotEqual(t, first, other, "different seeds draw different negatives")
}

func TestBalancedIndicesDegenerate(t *testing.T) {
	_, err := BalancedIndices([]float64{0, 0, 0}, 6, 42)
	assert.ErrorIs(t, err, ErrDegenerateTarget)

	_, err = BalancedIndices([]float64{1, 1}, 6, 42)
	assert.ErrorIs(t, err, ErrDegenerateTarget)

	_, err = BalancedIndices(nil, 6, 42)
	assert.ErrorIs(t, err, ErrDegenerateTarget)
}
