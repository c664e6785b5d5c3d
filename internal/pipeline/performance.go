package pipeline

import (
	"sort"

	"hrpulse/internal/hrdata"
)

// applyPerformance aggregates the half-yearly evaluation scores: the
// latest score, the distribution over all periods, a per-year trend and
// the one- and two-year window means.
func (e *Engine) applyPerformance(features map[string]*Features, ds *hrdata.Dataset) {
	if len(ds.Evaluations) == 0 {
		return
	}
	cut1y := e.asOf.AddDate(-1, 0, 0)
	cut2y := e.asOf.AddDate(-2, 0, 0)
	byEmp := groupBy(ds.Evaluations, func(ev hrdata.EvaluationScore) string { return ev.EmployeeID })
	for id, recs := range byEmp {
		f, ok := features[id]
		if !ok {
			continue
		}
		sorted := make([]hrdata.EvaluationScore, len(recs))
		copy(sorted, recs)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Date.Before(sorted[j].Date)
		})

		var scores, days []float64
		var win1y, win2y []float64
		for _, ev := range sorted {
			scores = append(scores, ev.Score)
			days = append(days, float64(ev.Date.Unix())/86400)
			if !ev.Date.Before(cut1y) {
				win1y = append(win1y, ev.Score)
			}
			if !ev.Date.Before(cut2y) {
				win2y = append(win2y, ev.Score)
			}
		}
		f.LatestEvalScore = sorted[len(sorted)-1].Score
		f.AvgEvalScore = mean(scores)
		f.EvalScoreStdDev = stddev(scores)
		f.EvalScoreTrend = slope(days, scores) * 365
		f.EvalScore1Y = mean(win1y)
		f.EvalScore2Y = mean(win2y)
	}
}
