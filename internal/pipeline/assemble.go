package pipeline

import (
	"fmt"
	"hash/fnv"
	"math"
	"sort"
)

// numericColumn binds a canonical column name to its source field. The
// accessor returns a pointer so the fill pass can write defaults back.
type numericColumn struct {
	name string
	ptr  func(*Features) *float64
}

// categoricalColumn binds a canonical column name to its source field.
type categoricalColumn struct {
	name string
	ptr  func(*Features) *string
}

// numericColumns is the canonical numeric layout. Order here fixes the
// column order of the encoded table.
var numericColumns = []numericColumn{
	{"age", func(f *Features) *float64 { return &f.Age }},
	{"age_at_hiring", func(f *Features) *float64 { return &f.AgeAtHiring }},
	{"tenure_days", func(f *Features) *float64 { return &f.TenureDays }},
	{"tenure_age_ratio", func(f *Features) *float64 { return &f.TenureAgeRatio }},
	{"prior_career_days", func(f *Features) *float64 { return &f.PriorCareerDays }},
	{"prior_companies", func(f *Features) *float64 { return &f.PriorCompanies }},
	{"prior_career_relevance", func(f *Features) *float64 { return &f.PriorCareerRelevance }},
	{"avg_tenure_per_company", func(f *Features) *float64 { return &f.AvgTenurePerCompany }},
	{"stem_major", func(f *Features) *float64 { return &f.STEMMajor }},
	{"dept_changes", func(f *Features) *float64 { return &f.DeptChanges }},
	{"avg_dept_tenure_days", func(f *Features) *float64 { return &f.AvgDeptTenureDays }},
	{"days_in_current_dept", func(f *Features) *float64 { return &f.DaysInCurrentDept }},
	{"promotions", func(f *Features) *float64 { return &f.Promotions }},
	{"avg_promotion_interval_days", func(f *Features) *float64 { return &f.AvgPromotionIntervalDays }},
	{"days_since_last_promotion", func(f *Features) *float64 { return &f.DaysSinceLastPromotion }},
	{"promotion_rate", func(f *Features) *float64 { return &f.PromotionRate }},
	{"projects", func(f *Features) *float64 { return &f.Projects }},
	{"avg_project_duration_days", func(f *Features) *float64 { return &f.AvgProjectDurationDays }},
	{"annual_pay", func(f *Features) *float64 { return &f.AnnualPay }},
	{"avg_pay_growth", func(f *Features) *float64 { return &f.AvgPayGrowth }},
	{"avg_variable_pay_ratio", func(f *Features) *float64 { return &f.AvgVariablePayRatio }},
	{"total_experience_years", func(f *Features) *float64 { return &f.TotalExperienceYears }},
	{"latest_eval_score", func(f *Features) *float64 { return &f.LatestEvalScore }},
	{"avg_eval_score", func(f *Features) *float64 { return &f.AvgEvalScore }},
	{"eval_score_stddev", func(f *Features) *float64 { return &f.EvalScoreStdDev }},
	{"eval_score_trend", func(f *Features) *float64 { return &f.EvalScoreTrend }},
	{"eval_score_1y", func(f *Features) *float64 { return &f.EvalScore1Y }},
	{"eval_score_2y", func(f *Features) *float64 { return &f.EvalScore2Y }},
	{"avg_overtime_minutes", func(f *Features) *float64 { return &f.AvgOvertimeMinutes }},
	{"avg_night_work_minutes", func(f *Features) *float64 { return &f.AvgNightWorkMinutes }},
	{"overtime_1y", func(f *Features) *float64 { return &f.Overtime1Y }},
	{"overtime_2y", func(f *Features) *float64 { return &f.Overtime2Y }},
	{"avg_leave_days", func(f *Features) *float64 { return &f.AvgLeaveDays }},
	{"avg_leave_length", func(f *Features) *float64 { return &f.AvgLeaveLength }},
	{"sick_leave_days", func(f *Features) *float64 { return &f.SickLeaveDays }},
	{"sick_leave_ratio", func(f *Features) *float64 { return &f.SickLeaveRatio }},
	{"total_absence_days", func(f *Features) *float64 { return &f.TotalAbsenceDays }},
	{"absences", func(f *Features) *float64 { return &f.Absences }},
}

// categoricalColumns is the canonical categorical layout. Raw id
// columns are deliberately absent: they are join keys, not features.
var categoricalColumns = []categoricalColumn{
	{"gender", func(f *Features) *string { return &f.Gender }},
	{"nationality", func(f *Features) *string { return &f.Nationality }},
	{"highest_degree", func(f *Features) *string { return &f.HighestDegree }},
	{"final_school_level", func(f *Features) *string { return &f.FinalSchoolLevel }},
	{"final_major_category", func(f *Features) *string { return &f.FinalMajorCategory }},
	{"latest_title", func(f *Features) *string { return &f.LatestTitle }},
	{"division", func(f *Features) *string { return &f.Division }},
	{"office", func(f *Features) *string { return &f.Office }},
	{"job_family", func(f *Features) *string { return &f.JobFamily }},
	{"job_subfamily", func(f *Features) *string { return &f.JobSubfamily }},
	{"position_title", func(f *Features) *string { return &f.PositionTitle }},
	{"salary_band", func(f *Features) *string { return &f.SalaryBand }},
}

// fillMissing applies the default policy in place: numeric missing
// values become 0, categorical missing values become "Unknown". The
// eval window means are filled with the population median first, since
// zero would be a pessimal score rather than a neutral one.
func fillMissing(features map[string]*Features, order []string) {
	var win1y, win2y []float64
	for _, id := range order {
		f := features[id]
		if !math.IsNaN(f.EvalScore1Y) {
			win1y = append(win1y, f.EvalScore1Y)
		}
		if !math.IsNaN(f.EvalScore2Y) {
			win2y = append(win2y, f.EvalScore2Y)
		}
	}
	med1y := quantile(win1y, 0.5)
	med2y := quantile(win2y, 0.5)
	for _, id := range order {
		f := features[id]
		if math.IsNaN(f.EvalScore1Y) && !math.IsNaN(med1y) {
			f.EvalScore1Y = med1y
		}
		if math.IsNaN(f.EvalScore2Y) && !math.IsNaN(med2y) {
			f.EvalScore2Y = med2y
		}
		for _, col := range numericColumns {
			if v := col.ptr(f); math.IsNaN(*v) {
				*v = 0
			}
		}
		for _, col := range categoricalColumns {
			if v := col.ptr(f); *v == "" {
				*v = Unknown
			}
		}
	}
}

// BuildSchema enumerates the observed categories of every categorical
// column (sorted for a stable drop-first layout) and fingerprints the
// resulting column set so the layout can be asserted at scoring time.
func BuildSchema(features map[string]*Features, order []string) EncodingSchema {
	schema := EncodingSchema{}
	for _, col := range categoricalColumns {
		distinct := make(map[string]bool)
		for _, id := range order {
			distinct[*col.ptr(features[id])] = true
		}
		cats := make([]string, 0, len(distinct))
		for c := range distinct {
			cats = append(cats, c)
		}
		sort.Strings(cats)
		schema.Columns = append(schema.Columns, EncodedColumn{Name: col.name, Categories: cats})
	}
	schema.Version = schemaVersion(schema)
	return schema
}

// schemaVersion is a deterministic fingerprint of the full encoded
// layout.
func schemaVersion(s EncodingSchema) string {
	h := fnv.New64a()
	for _, col := range numericColumns {
		h.Write([]byte(col.name))
		h.Write([]byte{0})
	}
	for _, col := range s.Columns {
		h.Write([]byte(col.Name))
		for _, c := range col.Categories {
			h.Write([]byte{0})
			h.Write([]byte(c))
		}
		h.Write([]byte{1})
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// EncodedColumns lists the output column names for a schema: every
// numeric column followed by one indicator per non-first category.
func EncodedColumns(schema EncodingSchema) []string {
	cols := make([]string, 0, len(numericColumns))
	for _, c := range numericColumns {
		cols = append(cols, c.name)
	}
	for _, col := range schema.Columns {
		for _, cat := range dropFirst(col.Categories) {
			cols = append(cols, col.Name+"_"+cat)
		}
	}
	return cols
}

func dropFirst(cats []string) []string {
	if len(cats) <= 1 {
		return nil
	}
	return cats[1:]
}

// EncodeRow projects one filled feature row onto the schema's column
// layout. Categories unseen at schema build time encode as all zeros.
func EncodeRow(schema EncodingSchema, f *Features) []float64 {
	row := make([]float64, 0, len(numericColumns))
	for _, c := range numericColumns {
		row = append(row, *c.ptr(f))
	}
	getters := make(map[string]func(*Features) *string, len(categoricalColumns))
	for _, c := range categoricalColumns {
		getters[c.name] = c.ptr
	}
	for _, col := range schema.Columns {
		value := *getters[col.Name](f)
		for _, cat := range dropFirst(col.Categories) {
			if value == cat {
				row = append(row, 1)
			} else {
				row = append(row, 0)
			}
		}
	}
	return row
}

// Assemble joins the per-block results into the final encoded table.
func Assemble(features map[string]*Features, order []string) *FeatureTable {
	fillMissing(features, order)
	schema := BuildSchema(features, order)
	table := &FeatureTable{
		Columns: EncodedColumns(schema),
		Schema:  schema,
	}
	for _, id := range order {
		f := features[id]
		table.EmployeeIDs = append(table.EmployeeIDs, id)
		table.Active = append(table.Active, f.Active)
		table.Leaver = append(table.Leaver, f.Leaver)
		table.Rows = append(table.Rows, EncodeRow(schema, f))
	}
	return table
}
