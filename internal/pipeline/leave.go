package pipeline

import (
	"math"

	"hrpulse/internal/hrdata"
)

// applyLeave aggregates taken leave: totals, average length, the
// sick-leave share and the tenure-annualized leave rate.
func (e *Engine) applyLeave(features map[string]*Features, ds *hrdata.Dataset) {
	if len(ds.Leaves) == 0 {
		return
	}
	sickType := ds.SickLeaveTypeID()
	byEmp := groupBy(ds.Leaves, func(l hrdata.LeaveRecord) string { return l.EmployeeID })
	for id, recs := range byEmp {
		f, ok := features[id]
		if !ok {
			continue
		}
		var lengths []float64
		var total, sick float64
		for _, l := range recs {
			lengths = append(lengths, l.LengthDays)
			total += l.LengthDays
			if sickType != "" && l.LeaveTypeID == sickType {
				sick += l.LengthDays
			}
		}
		f.AvgLeaveLength = mean(lengths)
		f.SickLeaveDays = sick
		if total > 0 {
			f.SickLeaveRatio = sick / total
		} else {
			f.SickLeaveRatio = 0
		}
		if !math.IsNaN(f.TenureDays) && f.TenureDays > 0 {
			f.AvgLeaveDays = total / f.TenureDays * 365
		} else {
			f.AvgLeaveDays = 0
		}
	}
}

// applyAbsence aggregates unplanned absences.
func (e *Engine) applyAbsence(features map[string]*Features, ds *hrdata.Dataset) {
	if len(ds.Absences) == 0 {
		return
	}
	byEmp := groupBy(ds.Absences, func(a hrdata.AbsenceRecord) string { return a.EmployeeID })
	for id, recs := range byEmp {
		f, ok := features[id]
		if !ok {
			continue
		}
		var total float64
		for _, a := range recs {
			total += a.DurationDays
		}
		f.TotalAbsenceDays = total
		f.Absences = float64(len(recs))
	}
}
