package pipeline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.InDelta(t, 2.0, mean([]float64{1, 2, 3}), 1e-12)
	assert.InDelta(t, 2.0, mean([]float64{1, math.NaN(), 3}), 1e-12)
	assert.True(t, math.IsNaN(mean(nil)))
	assert.True(t, math.IsNaN(mean([]float64{math.NaN()})))
}

func TestSum(t *testing.T) {
	assert.InDelta(t, 6.0, sum([]float64{1, 2, 3}), 1e-12)
	assert.InDelta(t, 4.0, sum([]float64{1, math.NaN(), 3}), 1e-12)
	assert.True(t, math.IsNaN(sum(nil)))
}

func TestStddev(t *testing.T) {
	// Sample stddev of {2,4,4,4,5,5,7,9} is ~2.138.
	got := stddev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.InDelta(t, 2.138, got, 1e-3)

	assert.True(t, math.IsNaN(stddev([]float64{5})))
	assert.True(t, math.IsNaN(stddev([]float64{5, math.NaN()})))
}

func TestQuantile(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}

	tests := []struct {
		name string
		q    float64
		want float64
	}{
		{"min", 0, 1},
		{"median", 0.5, 3},
		{"max", 1, 5},
		{"interpolated", 0.3, 2.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, quantile(values, tt.q), 1e-12)
		})
	}

	assert.True(t, math.IsNaN(quantile(nil, 0.5)))
	assert.InDelta(t, 7.0, quantile([]float64{7}, 0.9), 1e-12)
	assert.InDelta(t, 3.0, quantile([]float64{1, math.NaN(), 3, 5}, 0.5), 1e-12)
}

func TestSlope(t *testing.T) {
	// Perfect line y = 1 + 2x.
	xs := []float64{0, 1, 2, 3}
	ys := []float64{1, 3, 5, 7}
	assert.InDelta(t, 2.0, slope(xs, ys), 1e-12)

	// Flat series.
	assert.InDelta(t, 0.0, slope(xs, []float64{4, 4, 4, 4}), 1e-12)

	// Degenerate inputs.
	assert.Equal(t, 0.0, slope([]float64{1}, []float64{2}))
	assert.Equal(t, 0.0, slope([]float64{2, 2, 2}, []float64{1, 2, 3}))
}

func TestClip(t *testing.T) {
	assert.Equal(t, 5.0, clip(5, 0, 10))
	assert.Equal(t, 0.0, clip(-3, 0, 10))
	assert.Equal(t, 10.0, clip(42, 0, 10))
	assert.True(t, math.IsNaN(clip(math.NaN(), 0, 10)))
}

func TestRoundTo(t *testing.T) {
	assert.InDelta(t, 3.14, roundTo(3.14159, 2), 1e-12)
	assert.InDelta(t, 3.0, roundTo(3.14159, 0), 1e-12)
	assert.InDelta(t, -2.68, roundTo(-2.675, 2), 1e-2)
}
