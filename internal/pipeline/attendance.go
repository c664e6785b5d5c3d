package pipeline

import (
	"hrpulse/internal/hrdata"
)

// applyAttendance aggregates daily working-time records into overall
// and windowed overtime means plus the night-work mean.
func (e *Engine) applyAttendance(features map[string]*Features, ds *hrdata.Dataset) {
	if len(ds.Attendance) == 0 {
		return
	}
	cut1y := e.asOf.AddDate(-1, 0, 0)
	cut2y := e.asOf.AddDate(-2, 0, 0)
	byEmp := groupBy(ds.Attendance, func(a hrdata.AttendanceDay) string { return a.EmployeeID })
	for id, recs := range byEmp {
		f, ok := features[id]
		if !ok {
			continue
		}
		var overtime, night, win1y, win2y []float64
		for _, a := range recs {
			overtime = append(overtime, a.OvertimeMinutes)
			night = append(night, a.NightWorkMinutes)
			if !a.Date.Before(cut1y) {
				win1y = append(win1y, a.OvertimeMinutes)
			}
			if !a.Date.Before(cut2y) {
				win2y = append(win2y, a.OvertimeMinutes)
			}
		}
		f.AvgOvertimeMinutes = mean(overtime)
		f.AvgNightWorkMinutes = mean(night)
		f.Overtime1Y = mean(win1y)
		f.Overtime2Y = mean(win2y)
	}
}
