package pipeline

import (
	"math"
	"sort"
)

// mean averages the non-NaN values; NaN when nothing remains.
func mean(values []float64) float64 {
	var sum float64
	var n int
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// sum adds the non-NaN values; NaN when nothing remains.
func sum(values []float64) float64 {
	var total float64
	var n int
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		total += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return total
}

// stddev is the sample standard deviation (n-1 denominator); NaN for
// fewer than two usable values.
func stddev(values []float64) float64 {
	var clean []float64
	for _, v := range values {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) < 2 {
		return math.NaN()
	}
	m := mean(clean)
	var ss float64
	for _, v := range clean {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(clean)-1))
}

// quantile computes the q-th quantile with linear interpolation between
// order statistics. NaN values are dropped first; NaN when nothing
// remains.
func quantile(values []float64, q float64) float64 {
	var clean []float64
	for _, v := range values {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return math.NaN()
	}
	sort.Float64s(clean)
	if len(clean) == 1 {
		return clean[0]
	}
	pos := q * float64(len(clean)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return clean[lo]
	}
	frac := pos - float64(lo)
	return clean[lo] + frac*(clean[hi]-clean[lo])
}

// slope fits y = a + b*x by least squares and returns b. Zero when
// fewer than two points are given or all x coincide.
func slope(xs, ys []float64) float64 {
	if len(xs) < 2 || len(xs) != len(ys) {
		return 0
	}
	mx := mean(xs)
	my := mean(ys)
	var num, den float64
	for i := range xs {
		dx := xs[i] - mx
		num += dx * (ys[i] - my)
		den += dx * dx
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// clip bounds v to [lo, hi], passing NaN through.
func clip(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// roundTo rounds v to the given number of decimal places.
func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
