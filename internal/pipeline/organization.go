package pipeline

import (
	"time"

	"hrpulse/internal/hrdata"
)

// applyDepartments resolves the latest department assignment and the
// department-movement aggregates.
func (e *Engine) applyDepartments(features map[string]*Features, ds *hrdata.Dataset) {
	if len(ds.DepartmentHistory) == 0 {
		return
	}
	nodes := nodeIndex(ds.Departments)
	levels := DepartmentLevels()
	byEmp := groupBy(ds.DepartmentHistory, func(d hrdata.DepartmentAssignment) string { return d.EmployeeID })
	for id, recs := range byEmp {
		f, ok := features[id]
		if !ok {
			continue
		}
		latest, _ := LatestByStart(recs)
		f.LatestDepartmentID = latest.DepartmentID
		f.LatestTitle = latest.Title
		walked := WalkAncestors(latest.DepartmentID, nodes, levels)
		f.Division = walked[LevelDivision]
		f.Office = walked[LevelOffice]

		depts := make(map[string]bool)
		var durations []float64
		lastStart := recs[0].Start
		for _, r := range recs {
			depts[r.DepartmentID] = true
			durations = append(durations, r.DurationDays)
			if r.Start.After(lastStart) {
				lastStart = r.Start
			}
		}
		f.DeptChanges = float64(len(depts))
		f.AvgDeptTenureDays = mean(durations)
		f.DaysInCurrentDept = daysBetween(lastStart, e.referenceEnd(id))
	}
}

// applyJobs resolves the latest job assignment and walks the job tree
// for the family and subfamily names.
func (e *Engine) applyJobs(features map[string]*Features, ds *hrdata.Dataset) {
	if len(ds.JobHistory) == 0 {
		return
	}
	nodes := nodeIndex(ds.Jobs)
	levels := JobLevels()
	byEmp := groupBy(ds.JobHistory, func(j hrdata.JobAssignment) string { return j.EmployeeID })
	for id, recs := range byEmp {
		f, ok := features[id]
		if !ok {
			continue
		}
		latest, _ := LatestByStart(recs)
		f.LatestJobID = latest.JobID
		walked := WalkAncestors(latest.JobID, nodes, levels)
		f.JobFamily = walked[LevelJobFamily]
		f.JobSubfamily = walked[LevelJobSubfamily]
	}
}

// applyGrades resolves the latest position/grade and the promotion
// aggregates. Initial assignments never count as promotions.
func (e *Engine) applyGrades(features map[string]*Features, ds *hrdata.Dataset) {
	if len(ds.PositionHistory) == 0 {
		return
	}
	titles := make(map[string]string, len(ds.Positions))
	for _, p := range ds.Positions {
		titles[p.ID] = p.Name
	}
	byEmp := groupBy(ds.PositionHistory, func(g hrdata.GradeAssignment) string { return g.EmployeeID })
	for id, recs := range byEmp {
		f, ok := features[id]
		if !ok {
			continue
		}
		latest, _ := LatestByStart(recs)
		f.LatestPositionID = latest.PositionID
		f.LatestGradeID = latest.GradeID
		f.PositionTitle = titles[latest.PositionID]

		var promos []hrdata.GradeAssignment
		for _, g := range recs {
			if g.IsPromotion() {
				promos = append(promos, g)
			}
		}
		if len(promos) == 0 {
			f.Promotions = 0
			f.PromotionRate = 0
			continue
		}
		var durations []float64
		lastPromo := promos[0].Start
		for _, g := range promos {
			durations = append(durations, g.DurationDays)
			if g.Start.After(lastPromo) {
				lastPromo = g.Start
			}
		}
		f.Promotions = float64(len(promos))
		f.AvgPromotionIntervalDays = mean(durations)
		f.DaysSinceLastPromotion = daysBetween(lastPromo, e.asOf)
		f.PromotionRate = e.promotionRate(f, len(promos))
	}
}

// promotionRate is promotions per year of tenure; zero when the tenure
// is missing or not yet a full day.
func (e *Engine) promotionRate(f *Features, promotions int) float64 {
	if !(f.TenureDays > 0) {
		return 0
	}
	return float64(promotions) / (f.TenureDays / DaysPerYear)
}

// applyProjects aggregates project staffing history.
func (e *Engine) applyProjects(features map[string]*Features, ds *hrdata.Dataset) {
	if len(ds.Projects) == 0 {
		return
	}
	byEmp := groupBy(ds.Projects, func(p hrdata.ProjectAssignment) string { return p.EmployeeID })
	for id, recs := range byEmp {
		f, ok := features[id]
		if !ok {
			continue
		}
		projects := make(map[string]bool)
		var durations []float64
		for _, p := range recs {
			projects[p.ProjectID] = true
			durations = append(durations, p.DurationDays)
		}
		f.Projects = float64(len(projects))
		f.AvgProjectDurationDays = mean(durations)
	}
}

// referenceEnd returns the tenure end for one employee id: separation
// date for leavers, the run's reference date otherwise.
func (e *Engine) referenceEnd(employeeID string) time.Time {
	if emp, ok := e.employees[employeeID]; ok {
		return emp.ReferenceEnd(e.asOf)
	}
	return e.asOf
}
