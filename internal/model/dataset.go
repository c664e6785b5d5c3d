package model

import (
	"errors"
	"math/rand"
)

// ErrDegenerateTarget is returned when the training set has only one
// class; nothing useful can be learned from it.
var ErrDegenerateTarget = errors.New("training target has a single class")

// BalancedIndices builds the oversampled training selection: every
// leaver row once, plus ratio-times-as-many active rows drawn with
// replacement from a seeded generator. Row order is deterministic for
// a fixed seed.
func BalancedIndices(leaver []float64, ratio int, seed int64) ([]int, error) {
	var positives, negatives []int
	for i, y := range leaver {
		if y == 1 {
			positives = append(positives, i)
		} else {
			negatives = append(negatives, i)
		}
	}
	if len(positives) == 0 || len(negatives) == 0 {
		return nil, ErrDegenerateTarget
	}
	rng := rand.New(rand.NewSource(seed))
	out := make([]int, 0, len(positives)*(1+ratio))
	out = append(out, positives...)
	for i := 0; i < len(positives)*ratio; i++ {
		out = append(out, negatives[rng.Intn(len(negatives))])
	}
	return out, nil
}
