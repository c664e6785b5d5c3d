package hrdata

import (
	"time"
)

// Interval is the common shape shared by every history table: a record
// belongs to an employee and covers [Start, End]. A nil End means the
// assignment is still ongoing.
type Interval struct {
	RecordID   string     `json:"record_id"`
	EmployeeID string     `json:"employee_id"`
	Start      time.Time  `json:"start"`
	End        *time.Time `json:"end,omitempty"`
}

// Bounds returns the interval endpoints. Implemented on the embedded
// struct so every history record satisfies pipeline.IntervalRecord.
func (iv Interval) Bounds() (time.Time, *time.Time) {
	return iv.Start, iv.End
}

// SortID is the secondary sort key used to break ties deterministically
// when two records share the same boundary date.
func (iv Interval) SortID() string {
	return iv.RecordID
}

// Open reports whether the interval has no end date.
func (iv Interval) Open() bool {
	return iv.End == nil
}

// Employee is one row of the employee spine.
type Employee struct {
	ID             string     `json:"id"`
	PersonalID     string     `json:"personal_id"`
	Name           string     `json:"name"`
	Gender         string     `json:"gender"`
	Nationality    string     `json:"nationality"`
	HireDate       time.Time  `json:"hire_date"`
	SeparationDate *time.Time `json:"separation_date,omitempty"`
	Active         bool       `json:"active"`
}

// IsValid checks the minimum fields required to keep the row.
func (e Employee) IsValid() bool {
	return e.ID != "" && !e.HireDate.IsZero()
}

// ReferenceEnd returns the date that terminates the employee's tenure:
// the separation date for leavers, asOf for everyone still employed.
func (e Employee) ReferenceEnd(asOf time.Time) time.Time {
	if !e.Active && e.SeparationDate != nil {
		return *e.SeparationDate
	}
	return asOf
}

// HierarchyNode is a node of a self-referential tree (departments, jobs).
// ParentID is empty at the root. Level carries the explicit job level for
// job nodes and is zero for departments, which are matched by name instead.
type HierarchyNode struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ParentID string `json:"parent_id,omitempty"`
	Level    int    `json:"level,omitempty"`
	Type     string `json:"type,omitempty"`
}

// Position is a flat lookup row for position titles.
type Position struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// School is a lookup row for education history.
type School struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Level string `json:"level"`
}

// DepartmentAssignment is one interval of department membership.
type DepartmentAssignment struct {
	Interval
	DepartmentID string  `json:"department_id"`
	Title        string  `json:"title"`
	DurationDays float64 `json:"duration_days"`
}

// JobAssignment is one interval of job-family membership.
type JobAssignment struct {
	Interval
	JobID string `json:"job_id"`
}

// GradeAssignment is one interval at a position/grade. ChangeReason
// distinguishes promotions from the initial assignment.
type GradeAssignment struct {
	Interval
	PositionID   string  `json:"position_id"`
	GradeID      string  `json:"grade_id"`
	ChangeReason string  `json:"change_reason"`
	DurationDays float64 `json:"duration_days"`
}

// InitialAssignment is the ChangeReason marking the first grade an
// employee ever held; it is excluded from promotion counts.
const InitialAssignment = "Initial Assignment"

// IsPromotion reports whether the grade record counts as a promotion.
func (g GradeAssignment) IsPromotion() bool {
	return g.ChangeReason != InitialAssignment
}

// SalaryContract is one interval of a pay agreement.
type SalaryContract struct {
	Interval
	PayCategory string  `json:"pay_category"`
	Amount      float64 `json:"amount"`
}

// Pay categories recognized when deriving a contracted annual salary.
const (
	PayMonthly = "monthly"
	PayWeekly  = "weekly"
	PayDaily   = "daily"
	PayHourly  = "hourly"
	PayAnnual  = "annual"
)

// ProjectAssignment is one interval on a project.
type ProjectAssignment struct {
	Interval
	ProjectID    string  `json:"project_id"`
	DurationDays float64 `json:"duration_days"`
}

// CareerRecord is one prior employment before joining.
type CareerRecord struct {
	RecordID     string  `json:"record_id"`
	EmployeeID   string  `json:"employee_id"`
	CompanyID    string  `json:"company_id"`
	DurationDays float64 `json:"duration_days"`
	Relevant     bool    `json:"relevant"`
}

// SchoolRecord is one completed degree.
type SchoolRecord struct {
	RecordID      string `json:"record_id"`
	EmployeeID    string `json:"employee_id"`
	SchoolID      string `json:"school_id"`
	Degree        string `json:"degree"`
	MajorCategory string `json:"major_category"`
	GradYear      int    `json:"grad_year"`
}

// Degree names in ascending rank order.
const (
	DegreeAssociate = "Associate"
	DegreeBachelor  = "Bachelor"
	DegreeMaster    = "Master"
	DegreeDoctorate = "Doctorate"
)

// DegreeRank orders degrees so the highest one can be selected. Unknown
// degrees rank below every recognized one.
func DegreeRank(degree string) int {
	switch degree {
	case DegreeAssociate:
		return 1
	case DegreeBachelor:
		return 2
	case DegreeMaster:
		return 3
	case DegreeDoctorate:
		return 4
	default:
		return 0
	}
}

// STEMMajorCategory is the major category counted as STEM.
const STEMMajorCategory = "STEM"

// PayrollYear is one calendar year of total compensation.
type PayrollYear struct {
	EmployeeID       string  `json:"employee_id"`
	Year             int     `json:"year"`
	TotalPay         float64 `json:"total_pay"`
	YoYGrowth        float64 `json:"yoy_growth"`
	VariablePayRatio float64 `json:"variable_pay_ratio"`
}

// EvaluationScore is one periodic performance score. Date is derived
// from the half-year period label at load time.
type EvaluationScore struct {
	EmployeeID string    `json:"employee_id"`
	Period     string    `json:"period"`
	Date       time.Time `json:"date"`
	Score      float64   `json:"score"`
}

// AttendanceDay is one day of working-time bookkeeping.
type AttendanceDay struct {
	EmployeeID       string    `json:"employee_id"`
	Date             time.Time `json:"date"`
	OvertimeMinutes  float64   `json:"overtime_minutes"`
	NightWorkMinutes float64   `json:"night_work_minutes"`
}

// LeaveType is a lookup row; sick leave is identified by name.
type LeaveType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SickLeaveTypeName identifies the sick-leave type in the lookup table.
const SickLeaveTypeName = "Sick Leave"

// LeaveRecord is one taken leave.
type LeaveRecord struct {
	EmployeeID  string    `json:"employee_id"`
	LeaveTypeID string    `json:"leave_type_id"`
	Start       time.Time `json:"start"`
	LengthDays  float64   `json:"length_days"`
}

// AbsenceRecord is one unplanned absence.
type AbsenceRecord struct {
	RecordID     string  `json:"record_id"`
	EmployeeID   string  `json:"employee_id"`
	DurationDays float64 `json:"duration_days"`
}

// Dataset bundles every raw table the pipeline consumes. Any table other
// than Employees may be empty; the corresponding feature block is then
// skipped entirely.
type Dataset struct {
	Employees         []Employee
	Departments       []HierarchyNode
	DepartmentHistory []DepartmentAssignment
	Jobs              []HierarchyNode
	JobHistory        []JobAssignment
	Positions         []Position
	PositionHistory   []GradeAssignment
	SalaryContracts   []SalaryContract
	Schools           []School
	SchoolHistory     []SchoolRecord
	Careers           []CareerRecord
	Projects          []ProjectAssignment
	PayrollYears      []PayrollYear
	Evaluations       []EvaluationScore
	Attendance        []AttendanceDay
	LeaveTypes        []LeaveType
	Leaves            []LeaveRecord
	Absences          []AbsenceRecord
}

// SickLeaveTypeID resolves the sick-leave type id, or "" when the lookup
// table has no such row.
func (d *Dataset) SickLeaveTypeID() string {
	for _, lt := range d.LeaveTypes {
		if lt.Name == SickLeaveTypeName {
			return lt.ID
		}
	}
	return ""
}
