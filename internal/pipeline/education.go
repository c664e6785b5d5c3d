package pipeline

import (
	"hrpulse/internal/hrdata"
)

// applyEducation resolves the highest completed degree per employee and
// copies its school level and major category. When several records
// share the highest rank the first one in input order wins.
func (e *Engine) applyEducation(features map[string]*Features, records []hrdata.SchoolRecord, schools []hrdata.School) {
	if len(records) == 0 {
		return
	}
	schoolLevel := make(map[string]string, len(schools))
	for _, s := range schools {
		schoolLevel[s.ID] = s.Level
	}
	byEmp := groupBy(records, func(r hrdata.SchoolRecord) string { return r.EmployeeID })
	for id, recs := range byEmp {
		f, ok := features[id]
		if !ok {
			continue
		}
		best := recs[0]
		for _, r := range recs[1:] {
			if hrdata.DegreeRank(r.Degree) > hrdata.DegreeRank(best.Degree) {
				best = r
			}
		}
		f.HighestDegree = best.Degree
		f.FinalSchoolLevel = schoolLevel[best.SchoolID]
		f.FinalMajorCategory = best.MajorCategory
		if best.MajorCategory == hrdata.STEMMajorCategory {
			f.STEMMajor = 1
		} else {
			f.STEMMajor = 0
		}
	}
}
