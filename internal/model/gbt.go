package model

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"hrpulse/internal/pipeline"
)

// Node is one tree node. Leaves carry the (learning-rate-scaled)
// output value; internal nodes route on feature < threshold.
type Node struct {
	Feature   int     `json:"feature,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
	Left      *Node   `json:"left,omitempty"`
	Right     *Node   `json:"right,omitempty"`
	Leaf      bool    `json:"leaf"`
	Value     float64 `json:"value,omitempty"`
}

// Tree is one boosted regression tree over the margin residuals.
type Tree struct {
	Root *Node `json:"root"`
}

// Eval returns the tree output for one feature vector.
func (t *Tree) Eval(x []float64) float64 {
	n := t.Root
	for !n.Leaf {
		if x[n.Feature] < n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Value
}

// Features lists the distinct feature indices the tree splits on, in
// first-use order.
func (t *Tree) Features() []int {
	var out []int
	seen := make(map[int]bool)
	var walk func(*Node)
	walk = func(n *Node) {
		if n == nil || n.Leaf {
			return
		}
		if !seen[n.Feature] {
			seen[n.Feature] = true
			out = append(out, n.Feature)
		}
		walk(n.Left)
		walk(n.Right)
	}
	walk(t.Root)
	return out
}

// GBT is a gradient-boosted binary classifier over log-odds margins
// with a zero base score.
type GBT struct {
	Params        Params    `json:"params"`
	Trees         []*Tree   `json:"trees"`
	FeatureNames  []string  `json:"feature_names"`
	SchemaVersion string    `json:"schema_version"`
	TrainedAt     time.Time `json:"trained_at"`
}

// Margin is the raw additive score for one feature vector.
func (m *GBT) Margin(x []float64) float64 {
	var s float64
	for _, t := range m.Trees {
		s += t.Eval(x)
	}
	return s
}

// PredictProb is the attrition probability for one feature vector.
func (m *GBT) PredictProb(x []float64) float64 {
	return sigmoid(m.Margin(x))
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// Train fits the boosted ensemble on the oversampled balanced set
// derived from the encoded feature table. Identical inputs and params
// always yield an identical model.
func Train(ctx context.Context, table *pipeline.FeatureTable, params Params, logger *slog.Logger) (*GBT, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid training params: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	selection, err := BalancedIndices(table.Leaver, params.OversampleRatio, params.Seed)
	if err != nil {
		return nil, fmt.Errorf("sampling training rows: %w", err)
	}

	n := len(selection)
	rows := make([][]float64, n)
	labels := make([]float64, n)
	weights := make([]float64, n)
	for i, idx := range selection {
		rows[i] = table.Rows[idx]
		labels[i] = table.Leaver[idx]
		if labels[i] == 1 {
			weights[i] = params.PositiveWeight
		} else {
			weights[i] = 1
		}
	}

	logger.InfoContext(ctx, "training risk model",
		slog.Int("rows", n),
		slog.Int("features", table.NumFeatures()),
		slog.Int("rounds", params.Rounds))
	start := time.Now()

	margins := make([]float64, n)
	grad := make([]float64, n)
	hess := make([]float64, n)
	b := &treeBuilder{rows: rows, grad: grad, hess: hess, params: params}

	model := &GBT{
		Params:        params,
		FeatureNames:  table.Columns,
		SchemaVersion: table.Schema.Version,
		TrainedAt:     time.Now().UTC(),
	}
	all := make([]int, n)
	for i := range all {
		all[i] = i
	}
	for round := 0; round < params.Rounds; round++ {
		for i := range rows {
			p := sigmoid(margins[i])
			grad[i] = weights[i] * (p - labels[i])
			hess[i] = weights[i] * p * (1 - p)
		}
		tree := &Tree{Root: b.build(all, 0)}
		model.Trees = append(model.Trees, tree)
		for i, x := range rows {
			margins[i] += tree.Eval(x)
		}
	}

	logger.InfoContext(ctx, "risk model trained",
		slog.Int("trees", len(model.Trees)),
		slog.Duration("elapsed", time.Since(start)))
	return model, nil
}

// treeBuilder grows one tree by exact greedy splitting on the current
// gradient statistics.
type treeBuilder struct {
	rows   [][]float64
	grad   []float64
	hess   []float64
	params Params
}

func (b *treeBuilder) build(indices []int, depth int) *Node {
	var g, h float64
	for _, i := range indices {
		g += b.grad[i]
		h += b.hess[i]
	}
	leaf := func() *Node {
		return &Node{Leaf: true, Value: b.params.LearningRate * (-g / (h + b.params.Lambda))}
	}
	if depth >= b.params.MaxDepth || len(indices) < 2 {
		return leaf()
	}
	feature, threshold, ok := b.bestSplit(indices, g, h)
	if !ok {
		return leaf()
	}
	var left, right []int
	for _, i := range indices {
		if b.rows[i][feature] < threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return &Node{
		Feature:   feature,
		Threshold: threshold,
		Left:      b.build(left, depth+1),
		Right:     b.build(right, depth+1),
	}
}

// bestSplit scans every feature for the split with the highest gain,
// honoring the minimum hessian weight on both children. The lowest
// feature index wins gain ties, keeping training deterministic.
func (b *treeBuilder) bestSplit(indices []int, gTotal, hTotal float64) (int, float64, bool) {
	lambda := b.params.Lambda
	parentScore := gTotal * gTotal / (hTotal + lambda)

	bestGain := 0.0
	bestFeature := -1
	bestThreshold := 0.0

	numFeatures := len(b.rows[indices[0]])
	order := make([]int, len(indices))
	for f := 0; f < numFeatures; f++ {
		copy(order, indices)
		sort.SliceStable(order, func(i, j int) bool {
			return b.rows[order[i]][f] < b.rows[order[j]][f]
		})
		var gl, hl float64
		for k := 0; k < len(order)-1; k++ {
			i := order[k]
			gl += b.grad[i]
			hl += b.hess[i]
			cur := b.rows[i][f]
			next := b.rows[order[k+1]][f]
			if cur == next {
				continue
			}
			hr := hTotal - hl
			if hl < b.params.MinChildWeight || hr < b.params.MinChildWeight {
				continue
			}
			gr := gTotal - gl
			gain := 0.5 * (gl*gl/(hl+lambda) + gr*gr/(hr+lambda) - parentScore)
			if gain > bestGain {
				bestGain = gain
				bestFeature = f
				bestThreshold = (cur + next) / 2
			}
		}
	}
	if bestFeature < 0 {
		return 0, 0, false
	}
	return bestFeature, bestThreshold, true
}
