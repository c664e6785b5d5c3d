package pipeline

import (
	"sort"
	"time"
)

// IntervalRecord is satisfied by every history row via the embedded
// hrdata.Interval. Bounds returns the start date and an optional end
// date; SortID breaks ordering ties deterministically.
type IntervalRecord interface {
	Bounds() (time.Time, *time.Time)
	SortID() string
}

// ResolveCurrent selects the record that represents an employee's
// current state from interval-stamped history.
//
// For an active employee the open-ended record wins; when the history
// anomalously carries several open records the one with the smallest
// sort id is taken. For a separated employee the record with the
// greatest end date wins, open-ended records sorting last; ties again
// fall back to the sort id. The false return means the history slice
// was empty.
func ResolveCurrent[T IntervalRecord](records []T, active bool) (T, bool) {
	var zero T
	if len(records) == 0 {
		return zero, false
	}
	if active {
		var open []T
		for _, r := range records {
			if _, end := r.Bounds(); end == nil {
				open = append(open, r)
			}
		}
		if len(open) == 0 {
			return zero, false
		}
		sort.Slice(open, func(i, j int) bool {
			return open[i].SortID() < open[j].SortID()
		})
		return open[0], true
	}
	sorted := make([]T, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		_, ei := sorted[i].Bounds()
		_, ej := sorted[j].Bounds()
		switch {
		case ei == nil && ej == nil:
			return sorted[i].SortID() < sorted[j].SortID()
		case ei == nil:
			return false
		case ej == nil:
			return true
		case !ei.Equal(*ej):
			return ei.After(*ej)
		default:
			return sorted[i].SortID() < sorted[j].SortID()
		}
	})
	return sorted[0], true
}

// LatestByStart selects the record with the greatest start date, ties
// broken by ascending sort id. Used by the feature path, which cares
// about the most recently begun assignment regardless of whether it is
// still open.
func LatestByStart[T IntervalRecord](records []T) (T, bool) {
	var zero T
	if len(records) == 0 {
		return zero, false
	}
	sorted := make([]T, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		si, _ := sorted[i].Bounds()
		sj, _ := sorted[j].Bounds()
		if !si.Equal(sj) {
			return si.After(sj)
		}
		return sorted[i].SortID() < sorted[j].SortID()
	})
	return sorted[0], true
}

// groupBy buckets records per employee, preserving input order inside
// each bucket.
func groupBy[T any](records []T, key func(T) string) map[string][]T {
	out := make(map[string][]T)
	for _, r := range records {
		k := key(r)
		out[k] = append(out[k], r)
	}
	return out
}

// daysBetween counts whole days from a to b. Loader dates are midnight
// UTC, so the conversion is exact.
func daysBetween(a, b time.Time) float64 {
	return float64(b.Sub(a) / (24 * time.Hour))
}
