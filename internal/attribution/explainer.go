package attribution

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/bits"
	"math/rand"

	"hrpulse/internal/model"
	"hrpulse/internal/pipeline"
)

// Config bounds the sampling the explainer does.
type Config struct {
	// BackgroundSize is the number of rows in the reference sample the
	// interventional perturbation draws from.
	BackgroundSize int `yaml:"background_size" envconfig:"BACKGROUND_SIZE"`
	// GlobalSampleSize caps the rows scored for global attribution.
	GlobalSampleSize int `yaml:"global_sample_size" envconfig:"GLOBAL_SAMPLE_SIZE"`
	// Seed drives both samples.
	Seed int64 `yaml:"seed" envconfig:"SEED"`
}

// DefaultConfig returns the production explainer configuration.
func DefaultConfig() Config {
	return Config{BackgroundSize: 100, GlobalSampleSize: 2000, Seed: 42}
}

// rescaleEpsilon is the margin-sum magnitude below which contributions
// are split evenly instead of proportionally.
const rescaleEpsilon = 1e-12

// Explainer computes additive per-feature attributions for the boosted
// model. Attributions are exact Shapley values in margin space (cheap
// because every tree touches only a few features), rescaled to the
// probability scale so they sum to the distance from the base rate.
type Explainer struct {
	model      *model.GBT
	background [][]float64
	baseProb   float64
	logger     *slog.Logger
}

// NewExplainer draws the seeded background sample and precomputes the
// base probability.
func NewExplainer(ctx context.Context, m *model.GBT, table *pipeline.FeatureTable, cfg Config, logger *slog.Logger) (*Explainer, error) {
	if m == nil || len(m.Trees) == 0 {
		return nil, fmt.Errorf("explainer needs a trained model")
	}
	if len(table.Rows) == 0 {
		return nil, fmt.Errorf("explainer needs a non-empty feature table")
	}
	if table.Schema.Version != m.SchemaVersion {
		return nil, fmt.Errorf("schema mismatch: table %s, model %s",
			table.Schema.Version, m.SchemaVersion)
	}
	if logger == nil {
		logger = slog.Default()
	}
	background := sampleRows(table.Rows, cfg.BackgroundSize, cfg.Seed)
	var probSum float64
	for _, b := range background {
		probSum += sigmoid(m.Margin(b))
	}
	e := &Explainer{
		model:      m,
		background: background,
		baseProb:   probSum / float64(len(background)),
		logger:     logger,
	}
	logger.InfoContext(ctx, "explainer ready",
		slog.Int("background_rows", len(background)),
		slog.Float64("base_rate", e.baseProb))
	return e, nil
}

// BaseValue is the background attrition rate on the percentage scale.
func (e *Explainer) BaseValue() float64 {
	return e.baseProb * 100
}

// Explanation is the additive attribution for one employee row. Base
// plus the sum of contributions equals Risk exactly.
type Explanation struct {
	Base          float64   `json:"base"`
	Risk          float64   `json:"risk"`
	Contributions []float64 `json:"contributions"`
}

// Explain attributes one feature vector. The returned contributions
// are aligned with the model's feature names and expressed in
// percentage points.
func (e *Explainer) Explain(x []float64) Explanation {
	margin := make([]float64, len(x))
	for _, tree := range e.model.Trees {
		e.addTreeShapley(tree, x, margin)
	}

	p := sigmoid(e.model.Margin(x))
	delta := p - e.baseProb
	var total float64
	for _, v := range margin {
		total += v
	}

	contribs := make([]float64, len(x))
	if math.Abs(total) < rescaleEpsilon {
		// Nothing moved the margin; spread the residual evenly so
		// additivity still holds.
		even := delta / float64(len(x))
		for i := range contribs {
			contribs[i] = even * 100
		}
	} else {
		scale := delta / total
		for i, v := range margin {
			contribs[i] = v * scale * 100
		}
	}
	return Explanation{
		Base:          e.baseProb * 100,
		Risk:          p * 100,
		Contributions: contribs,
	}
}

// addTreeShapley accumulates the exact interventional Shapley values
// of one tree into out, averaged over the background sample. A depth-d
// tree splits on at most 2^d - 1 distinct features, so enumerating all
// feature subsets stays trivial.
func (e *Explainer) addTreeShapley(tree *model.Tree, x []float64, out []float64) {
	feats := tree.Features()
	k := len(feats)
	if k == 0 {
		return
	}
	// Subset weights |T|!(k-|T|-1)!/k!, indexed by |T|.
	weights := make([]float64, k)
	for size := 0; size < k; size++ {
		weights[size] = 1 / (float64(k) * binomial(k-1, size))
	}
	nMasks := 1 << k
	values := make([]float64, nMasks)
	invBG := 1 / float64(len(e.background))
	present := make(map[int]bool, k)
	for mask := 0; mask < nMasks; mask++ {
		clear(present)
		for fi, f := range feats {
			if mask&(1<<fi) != 0 {
				present[f] = true
			}
		}
		for _, b := range e.background {
			values[mask] += evalHybrid(tree, x, b, present) * invBG
		}
	}
	for fi, f := range feats {
		bit := 1 << fi
		var phi float64
		for mask := 0; mask < nMasks; mask++ {
			if mask&bit != 0 {
				continue
			}
			size := bits.OnesCount(uint(mask))
			phi += weights[size] * (values[mask|bit] - values[mask])
		}
		out[f] += phi
	}
}

// evalHybrid walks the tree reading present features from x and the
// rest from the background row.
func evalHybrid(tree *model.Tree, x, b []float64, present map[int]bool) float64 {
	n := tree.Root
	for !n.Leaf {
		v := b[n.Feature]
		if present[n.Feature] {
			v = x[n.Feature]
		}
		if v < n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Value
}

func binomial(n, k int) float64 {
	if k < 0 || k > n {
		return 0
	}
	out := 1.0
	for i := 0; i < k; i++ {
		out = out * float64(n-i) / float64(i+1)
	}
	return out
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// sampleRows draws up to size rows without replacement from a seeded
// shuffle; fewer rows than size means everything is used as-is.
func sampleRows(rows [][]float64, size int, seed int64) [][]float64 {
	if size <= 0 || len(rows) <= size {
		return rows
	}
	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(len(rows))
	out := make([][]float64, size)
	for i := 0; i < size; i++ {
		out[i] = rows[perm[i]]
	}
	return out
}
