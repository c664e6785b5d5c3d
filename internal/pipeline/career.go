package pipeline

import (
	"hrpulse/internal/hrdata"
)

// applyCareer aggregates prior-employment history. Employees without
// any career rows keep their missing markers (experienced-hire flags
// come from the presence of rows, not from zeros).
func (e *Engine) applyCareer(features map[string]*Features, careers []hrdata.CareerRecord) {
	if len(careers) == 0 {
		return
	}
	byEmp := groupBy(careers, func(c hrdata.CareerRecord) string { return c.EmployeeID })
	for id, recs := range byEmp {
		f, ok := features[id]
		if !ok {
			continue
		}
		var days float64
		var relevant float64
		companies := make(map[string]bool)
		for _, c := range recs {
			days += c.DurationDays
			companies[c.CompanyID] = true
			if c.Relevant {
				relevant++
			}
		}
		f.PriorCareerDays = days
		f.PriorCompanies = float64(len(companies))
		f.PriorCareerRelevance = relevant / float64(len(recs))
		f.AvgTenurePerCompany = days / float64(len(companies))
	}
}
