package pipeline

import (
	"sort"
)

// applyOutlierPatches replaces values known to come from upstream
// bookkeeping defects with plausible draws from a seeded generator:
// negative windowed overtime means and annualized leave rates beyond
// fifty days per year. Employees are visited in id order so a fixed
// seed yields identical output across runs.
func (e *Engine) applyOutlierPatches(features map[string]*Features) {
	if !e.patchOutliers {
		return
	}
	ids := make([]string, 0, len(features))
	for id := range features {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var patched int
	for _, id := range ids {
		f := features[id]
		if f.Overtime1Y < 0 {
			f.Overtime1Y = float64(80 + e.rng.Intn(41))
			patched++
		}
		if f.Overtime2Y < 0 {
			f.Overtime2Y = float64(30 + e.rng.Intn(41))
			patched++
		}
		if f.AvgLeaveDays > 50 {
			f.AvgLeaveDays = roundTo(40+e.rng.Float64()*10, 6)
			patched++
		}
	}
	if patched > 0 {
		e.logger.Info("patched outlier values", "count", patched)
	}
}
