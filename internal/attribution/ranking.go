package attribution

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"sort"
	"time"

	"hrpulse/internal/pipeline"
)

// FeatureWeight pairs a feature name with an attribution magnitude.
type FeatureWeight struct {
	Feature string  `json:"feature"`
	Value   float64 `json:"value"`
}

// GlobalAttribution is the dataset-level view: mean absolute
// contribution per feature over a seeded row sample, descending.
type GlobalAttribution struct {
	Base       float64         `json:"base"`
	SampleSize int             `json:"sample_size"`
	Features   []FeatureWeight `json:"features"`
	ComputedAt time.Time       `json:"computed_at"`
}

// TopFeatures returns the n heaviest features of a global attribution.
// Ties keep the original column order (the sort is stable), so equal
// weights never reorder between runs.
func (g *GlobalAttribution) TopFeatures(n int) []FeatureWeight {
	if n <= 0 || n > len(g.Features) {
		n = len(g.Features)
	}
	out := make([]FeatureWeight, n)
	copy(out, g.Features[:n])
	return out
}

// ExplainGlobal scores a seeded sample of rows and averages the
// absolute contributions per feature.
func (e *Explainer) ExplainGlobal(ctx context.Context, table *pipeline.FeatureTable, sampleSize int, seed int64) *GlobalAttribution {
	rows := table.Rows
	if sampleSize > 0 && len(rows) > sampleSize {
		rng := rand.New(rand.NewSource(seed))
		perm := rng.Perm(len(rows))
		sampled := make([][]float64, sampleSize)
		for i := 0; i < sampleSize; i++ {
			sampled[i] = rows[perm[i]]
		}
		rows = sampled
	}

	start := time.Now()
	sums := make([]float64, table.NumFeatures())
	for _, x := range rows {
		exp := e.Explain(x)
		for i, c := range exp.Contributions {
			sums[i] += math.Abs(c)
		}
	}
	features := make([]FeatureWeight, len(sums))
	for i, s := range sums {
		features[i] = FeatureWeight{
			Feature: table.Columns[i],
			Value:   s / float64(len(rows)),
		}
	}
	sort.SliceStable(features, func(i, j int) bool {
		return features[i].Value > features[j].Value
	})

	e.logger.InfoContext(ctx, "global attribution computed",
		slog.Int("rows", len(rows)),
		slog.Duration("elapsed", time.Since(start)))
	return &GlobalAttribution{
		Base:       e.BaseValue(),
		SampleSize: len(rows),
		Features:   features,
		ComputedAt: time.Now().UTC(),
	}
}

// EmployeeAttribution is the local view for one employee: the risk
// score and every feature's signed contribution, heaviest first.
type EmployeeAttribution struct {
	EmployeeID    string          `json:"employee_id"`
	Base          float64         `json:"base"`
	Risk          float64         `json:"risk"`
	Contributions []FeatureWeight `json:"contributions"`
}

// ExplainEmployee attributes one row of the table, sorted by absolute
// contribution descending with stable ties.
func (e *Explainer) ExplainEmployee(table *pipeline.FeatureTable, employeeID string) (*EmployeeAttribution, bool) {
	x, ok := table.RowByEmployee(employeeID)
	if !ok {
		return nil, false
	}
	exp := e.Explain(x)
	contribs := make([]FeatureWeight, len(exp.Contributions))
	for i, c := range exp.Contributions {
		contribs[i] = FeatureWeight{Feature: table.Columns[i], Value: c}
	}
	sort.SliceStable(contribs, func(i, j int) bool {
		return math.Abs(contribs[i].Value) > math.Abs(contribs[j].Value)
	})
	return &EmployeeAttribution{
		EmployeeID:    employeeID,
		Base:          exp.Base,
		Risk:          exp.Risk,
		Contributions: contribs,
	}, true
}

// RiskEntry is one row of the active-employee risk ranking.
type RiskEntry struct {
	EmployeeID string  `json:"employee_id"`
	Risk       float64 `json:"risk"`
}

// RankActive scores every active employee and sorts descending by
// risk; equal scores keep spine order.
func (e *Explainer) RankActive(table *pipeline.FeatureTable) []RiskEntry {
	var out []RiskEntry
	for i, id := range table.EmployeeIDs {
		if !table.Active[i] {
			continue
		}
		out = append(out, RiskEntry{
			EmployeeID: id,
			Risk:       e.model.PredictProb(table.Rows[i]) * 100,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Risk > out[j].Risk
	})
	return out
}
