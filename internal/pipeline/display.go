package pipeline

import (
	"math"

	"hrpulse/internal/hrdata"
)

// Contracted-pay multipliers for converting a pay rate to an annual
// figure.
const (
	weeksPerYear        = 52
	workdaysPerYear     = 250
	workingHoursPerYear = 2080
)

// annualFromContract converts a contracted pay amount to an annual
// salary, rounded to the nearest ten thousand.
func annualFromContract(c hrdata.SalaryContract) float64 {
	var annual float64
	switch c.PayCategory {
	case hrdata.PayMonthly:
		annual = c.Amount * 12
	case hrdata.PayWeekly:
		annual = c.Amount * weeksPerYear
	case hrdata.PayDaily:
		annual = c.Amount * workdaysPerYear
	case hrdata.PayHourly:
		annual = c.Amount * workingHoursPerYear
	default:
		annual = c.Amount
	}
	return math.Round(annual/10000) * 10000
}

// buildProfiles produces the human-readable companion table. Unlike
// the feature path, the current department and job are resolved with
// the open-interval/max-end-date policy so the row reflects where the
// employee actually sits (or last sat).
func (e *Engine) buildProfiles(ds *hrdata.Dataset, order []string) []EmployeeProfile {
	deptNodes := nodeIndex(ds.Departments)
	jobNodes := nodeIndex(ds.Jobs)
	deptLevels := DepartmentLevels()
	jobLevels := JobLevels()

	deptHist := groupBy(ds.DepartmentHistory, func(d hrdata.DepartmentAssignment) string { return d.EmployeeID })
	jobHist := groupBy(ds.JobHistory, func(j hrdata.JobAssignment) string { return j.EmployeeID })
	contracts := groupBy(ds.SalaryContracts, func(s hrdata.SalaryContract) string { return s.EmployeeID })
	schoolHist := groupBy(ds.SchoolHistory, func(s hrdata.SchoolRecord) string { return s.EmployeeID })
	careers := groupBy(ds.Careers, func(c hrdata.CareerRecord) string { return c.EmployeeID })
	schoolNames := make(map[string]string, len(ds.Schools))
	for _, s := range ds.Schools {
		schoolNames[s.ID] = s.Name
	}

	profiles := make([]EmployeeProfile, 0, len(order))
	for _, id := range order {
		emp := e.employees[id]
		p := EmployeeProfile{
			EmployeeID:      id,
			Name:            emp.Name,
			HireDate:        emp.HireDate,
			Division:        Unknown,
			Office:          Unknown,
			JobFamily:       Unknown,
			JobSubfamily:    Unknown,
			SchoolName:      Unknown,
			MajorCategory:   Unknown,
			WorkLocation:    LocationOffsite,
			ExperiencedHire: len(careers[id]) > 0,
		}

		if cur, ok := ResolveCurrent(deptHist[id], emp.Active); ok {
			walked := WalkAncestors(cur.DepartmentID, deptNodes, deptLevels)
			p.Division = walked[LevelDivision]
			p.Office = walked[LevelOffice]
			days := daysBetween(cur.Start, emp.ReferenceEnd(e.asOf))
			p.DaysInDepartment = &days
			if node, found := deptNodes[cur.DepartmentID]; found && node.Type == DeptTypeHQ {
				p.WorkLocation = LocationHQ
			}
		}
		if cur, ok := ResolveCurrent(jobHist[id], emp.Active); ok {
			walked := WalkAncestors(cur.JobID, jobNodes, jobLevels)
			p.JobFamily = walked[LevelJobFamily]
			p.JobSubfamily = walked[LevelJobSubfamily]
			// A leaf without a level-2 ancestor is its own subfamily.
			if p.JobSubfamily == Unknown {
				if node, found := jobNodes[cur.JobID]; found {
					p.JobSubfamily = node.Name
				}
			}
		}
		if latest, ok := LatestByStart(contracts[id]); ok {
			annual := annualFromContract(latest)
			p.ContractAnnualSalary = &annual
		}
		if recs := schoolHist[id]; len(recs) > 0 {
			final := recs[0]
			for _, r := range recs[1:] {
				if r.GradYear > final.GradYear {
					final = r
				}
			}
			if name, found := schoolNames[final.SchoolID]; found {
				p.SchoolName = name
			}
			if final.MajorCategory != "" {
				p.MajorCategory = final.MajorCategory
			}
		}
		profiles = append(profiles, p)
	}
	return profiles
}
