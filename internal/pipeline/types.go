package pipeline

import (
	"math"
	"time"
)

// Salary band labels relative to the experience-and-job peer group.
const (
	BandAbove  = "above"
	BandMid    = "mid"
	BandBelow  = "below"
	BandNoData = "no data"
)

// Unknown is the sentinel for any categorical value that could not be
// resolved.
const Unknown = "Unknown"

// DaysPerYear converts day counts to calendar years.
const DaysPerYear = 365.25

// Features is the per-employee row produced by the aggregation stage.
// Numeric fields start as NaN (missing) and string fields as "" until a
// domain block fills them in; the assembler applies the final default
// policy (0 / "Unknown").
type Features struct {
	EmployeeID string
	Active     bool
	Leaver     float64

	// Basic block
	Age            float64
	AgeAtHiring    float64
	TenureDays     float64
	TenureAgeRatio float64
	Gender         string
	Nationality    string

	// Career block
	PriorCareerDays      float64
	PriorCompanies       float64
	PriorCareerRelevance float64
	AvgTenurePerCompany  float64

	// Education block
	HighestDegree      string
	FinalSchoolLevel   string
	FinalMajorCategory string
	STEMMajor          float64

	// Organization block. The raw ids are join keys only and never
	// reach the encoded table.
	LatestDepartmentID       string
	LatestJobID              string
	LatestPositionID         string
	LatestGradeID            string
	LatestTitle              string
	Division                 string
	Office                   string
	JobFamily                string
	JobSubfamily             string
	PositionTitle            string
	DeptChanges              float64
	AvgDeptTenureDays        float64
	DaysInCurrentDept        float64
	Promotions               float64
	AvgPromotionIntervalDays float64
	DaysSinceLastPromotion   float64
	PromotionRate            float64
	Projects                 float64
	AvgProjectDurationDays   float64

	// Payroll block
	AnnualPay            float64
	AvgPayGrowth         float64
	AvgVariablePayRatio  float64
	TotalExperienceYears float64
	SalaryBand           string

	// Performance block
	LatestEvalScore float64
	AvgEvalScore    float64
	EvalScoreStdDev float64
	EvalScoreTrend  float64
	EvalScore1Y     float64
	EvalScore2Y     float64

	// Attendance block
	AvgOvertimeMinutes  float64
	AvgNightWorkMinutes float64
	Overtime1Y          float64
	Overtime2Y          float64

	// Leave block
	AvgLeaveDays   float64
	AvgLeaveLength float64
	SickLeaveDays  float64
	SickLeaveRatio float64

	// Absence block
	TotalAbsenceDays float64
	Absences         float64
}

// newFeatures returns a row with every numeric field marked missing.
func newFeatures(employeeID string) *Features {
	f := &Features{EmployeeID: employeeID}
	nan := math.NaN()
	f.Age = nan
	f.AgeAtHiring = nan
	f.TenureDays = nan
	f.TenureAgeRatio = nan
	f.PriorCareerDays = nan
	f.PriorCompanies = nan
	f.PriorCareerRelevance = nan
	f.AvgTenurePerCompany = nan
	f.STEMMajor = nan
	f.DeptChanges = nan
	f.AvgDeptTenureDays = nan
	f.DaysInCurrentDept = nan
	f.Promotions = nan
	f.AvgPromotionIntervalDays = nan
	f.DaysSinceLastPromotion = nan
	f.PromotionRate = nan
	f.Projects = nan
	f.AvgProjectDurationDays = nan
	f.AnnualPay = nan
	f.AvgPayGrowth = nan
	f.AvgVariablePayRatio = nan
	f.TotalExperienceYears = nan
	f.LatestEvalScore = nan
	f.AvgEvalScore = nan
	f.EvalScoreStdDev = nan
	f.EvalScoreTrend = nan
	f.EvalScore1Y = nan
	f.EvalScore2Y = nan
	f.AvgOvertimeMinutes = nan
	f.AvgNightWorkMinutes = nan
	f.Overtime1Y = nan
	f.Overtime2Y = nan
	f.AvgLeaveDays = nan
	f.AvgLeaveLength = nan
	f.SickLeaveDays = nan
	f.SickLeaveRatio = nan
	f.TotalAbsenceDays = nan
	f.Absences = nan
	return f
}

// EncodedColumn is the enumerated category list for one categorical
// column. Encoded output carries Categories[1:]; the first category is
// dropped to avoid collinearity.
type EncodedColumn struct {
	Name       string   `json:"name"`
	Categories []string `json:"categories"`
}

// EncodingSchema is the versioned one-hot layout produced once at
// assembly time and reused verbatim afterwards, so the model's input
// schema cannot drift between training and scoring.
type EncodingSchema struct {
	Version string          `json:"version"`
	Columns []EncodedColumn `json:"columns"`
}

// FeatureTable is the numeric-encoded output of the assembler: one row
// per employee over a fixed column layout.
type FeatureTable struct {
	EmployeeIDs []string       `json:"employee_ids"`
	Active      []bool         `json:"active"`
	Leaver      []float64      `json:"leaver"`
	Columns     []string       `json:"columns"`
	Rows        [][]float64    `json:"rows"`
	Schema      EncodingSchema `json:"schema"`
}

// RowByEmployee returns the feature vector for one employee id.
func (t *FeatureTable) RowByEmployee(id string) ([]float64, bool) {
	for i, eid := range t.EmployeeIDs {
		if eid == id {
			return t.Rows[i], true
		}
	}
	return nil, false
}

// NumFeatures returns the width of the encoded table.
func (t *FeatureTable) NumFeatures() int {
	return len(t.Columns)
}

// EmployeeProfile is the human-readable companion row used by the
// display layer. Nothing here is encoded or imputed beyond "Unknown";
// numeric fields are nil when the backing table has no rows for the
// employee, so renderers see an explicit absence instead of a
// sentinel.
type EmployeeProfile struct {
	EmployeeID           string    `json:"employee_id"`
	Name                 string    `json:"name"`
	HireDate             time.Time `json:"hire_date"`
	Division             string    `json:"division"`
	Office               string    `json:"office"`
	JobFamily            string    `json:"job_family"`
	JobSubfamily         string    `json:"job_subfamily"`
	ContractAnnualSalary *float64  `json:"contract_annual_salary,omitempty"`
	SchoolName           string    `json:"school_name"`
	MajorCategory        string    `json:"major_category"`
	ExperiencedHire      bool      `json:"experienced_hire"`
	DaysInDepartment     *float64  `json:"days_in_department,omitempty"`
	WorkLocation         string    `json:"work_location"`
}

// Work location labels derived from the department type.
const (
	LocationHQ      = "HQ"
	LocationOffsite = "Off-site"
	DeptTypeHQ      = "HQ"
)
