package hrdata

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used by every table.
const DateLayout = "2006-01-02"

// ErrNoEmployees is returned when the employee spine is missing or
// empty. Nothing meaningful can be computed without it.
var ErrNoEmployees = errors.New("no employee data")

// Canonical file names inside the data directory.
const (
	FileEmployees         = "employees.csv"
	FileDepartments       = "departments.csv"
	FileDepartmentHistory = "department_history.csv"
	FileJobs              = "jobs.csv"
	FileJobHistory        = "job_history.csv"
	FilePositions         = "positions.csv"
	FilePositionHistory   = "position_history.csv"
	FileSalaryContracts   = "salary_contracts.csv"
	FileSchools           = "schools.csv"
	FileSchoolHistory     = "school_history.csv"
	FileCareers           = "careers.csv"
	FileProjects          = "projects.csv"
	FilePayrollYears      = "payroll_years.csv"
	FileEvaluations       = "evaluations.csv"
	FileAttendance        = "attendance.csv"
	FileLeaveTypes        = "leave_types.csv"
	FileLeaves            = "leaves.csv"
	FileAbsences          = "absences.csv"
)

// Loader reads the raw HR tables from a directory of CSV files.
type Loader struct {
	dataDir string
	logger  *slog.Logger
}

// NewLoader creates a loader rooted at dataDir.
func NewLoader(dataDir string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{dataDir: dataDir, logger: logger}
}

// Load reads every table. A missing or unreadable optional file yields
// an empty table and a warning; a missing employee spine is fatal.
func (l *Loader) Load(ctx context.Context) (*Dataset, error) {
	ds := &Dataset{}

	rows, err := l.readFile(ctx, FileEmployees)
	if err != nil || len(rows) == 0 {
		return nil, fmt.Errorf("load employee spine: %w", ErrNoEmployees)
	}
	ds.Employees = l.parseEmployees(ctx, rows)
	if len(ds.Employees) == 0 {
		return nil, fmt.Errorf("load employee spine: %w", ErrNoEmployees)
	}

	ds.Departments = l.parseNodes(ctx, l.readOptional(ctx, FileDepartments))
	ds.DepartmentHistory = l.parseDepartmentHistory(ctx, l.readOptional(ctx, FileDepartmentHistory))
	ds.Jobs = l.parseNodes(ctx, l.readOptional(ctx, FileJobs))
	ds.JobHistory = l.parseJobHistory(ctx, l.readOptional(ctx, FileJobHistory))
	ds.Positions = l.parsePositions(ctx, l.readOptional(ctx, FilePositions))
	ds.PositionHistory = l.parsePositionHistory(ctx, l.readOptional(ctx, FilePositionHistory))
	ds.SalaryContracts = l.parseSalaryContracts(ctx, l.readOptional(ctx, FileSalaryContracts))
	ds.Schools = l.parseSchools(ctx, l.readOptional(ctx, FileSchools))
	ds.SchoolHistory = l.parseSchoolHistory(ctx, l.readOptional(ctx, FileSchoolHistory))
	ds.Careers = l.parseCareers(ctx, l.readOptional(ctx, FileCareers))
	ds.Projects = l.parseProjects(ctx, l.readOptional(ctx, FileProjects))
	ds.PayrollYears = l.parsePayrollYears(ctx, l.readOptional(ctx, FilePayrollYears))
	ds.Evaluations = l.parseEvaluations(ctx, l.readOptional(ctx, FileEvaluations))
	ds.Attendance = l.parseAttendance(ctx, l.readOptional(ctx, FileAttendance))
	ds.LeaveTypes = l.parseLeaveTypes(ctx, l.readOptional(ctx, FileLeaveTypes))
	ds.Leaves = l.parseLeaves(ctx, l.readOptional(ctx, FileLeaves))
	ds.Absences = l.parseAbsences(ctx, l.readOptional(ctx, FileAbsences))

	l.logger.InfoContext(ctx, "hr dataset loaded",
		"employees", len(ds.Employees),
		"department_history", len(ds.DepartmentHistory),
		"job_history", len(ds.JobHistory),
		"position_history", len(ds.PositionHistory),
		"payroll_years", len(ds.PayrollYears),
		"evaluations", len(ds.Evaluations),
		"attendance", len(ds.Attendance),
		"leaves", len(ds.Leaves),
		"absences", len(ds.Absences),
	)

	return ds, nil
}

// record is one CSV row indexed by lower-cased header name.
type record map[string]string

func (r record) str(key string) string { return strings.TrimSpace(r[key]) }

func (r record) float(key string) (float64, bool) {
	s := r.str(key)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func (r record) int(key string) (int, bool) {
	s := r.str(key)
	if s == "" {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}

func (r record) date(key string) (time.Time, bool) {
	s := r.str(key)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (r record) dateRef(key string) *time.Time {
	if t, ok := r.date(key); ok {
		return &t
	}
	return nil
}

func (r record) yes(key string) bool {
	switch strings.ToLower(r.str(key)) {
	case "y", "yes", "true", "1":
		return true
	}
	return false
}

func (l *Loader) readOptional(ctx context.Context, name string) []record {
	rows, err := l.readFile(ctx, name)
	if err != nil {
		l.logger.WarnContext(ctx, "optional table unavailable",
			"file", name,
			"error", err,
		)
		return nil
	}
	return rows
}

func (l *Loader) readFile(ctx context.Context, name string) ([]record, error) {
	path := filepath.Join(l.dataDir, name)
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	raw, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if len(raw) < 2 {
		return nil, nil
	}

	header := make([]string, len(raw[0]))
	for i, h := range raw[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	rows := make([]record, 0, len(raw)-1)
	for _, fields := range raw[1:] {
		row := make(record, len(header))
		for i, v := range fields {
			if i < len(header) {
				row[header[i]] = v
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (l *Loader) parseEmployees(ctx context.Context, rows []record) []Employee {
	out := make([]Employee, 0, len(rows))
	for _, r := range rows {
		hire, ok := r.date("hire_date")
		if !ok || r.str("id") == "" {
			l.logger.WarnContext(ctx, "skipping malformed employee row", "id", r.str("id"))
			continue
		}
		out = append(out, Employee{
			ID:             r.str("id"),
			PersonalID:     r.str("personal_id"),
			Name:           r.str("name"),
			Gender:         r.str("gender"),
			Nationality:    r.str("nationality"),
			HireDate:       hire,
			SeparationDate: r.dateRef("separation_date"),
			Active:         r.yes("active"),
		})
	}
	return out
}

func (l *Loader) parseNodes(ctx context.Context, rows []record) []HierarchyNode {
	out := make([]HierarchyNode, 0, len(rows))
	for _, r := range rows {
		if r.str("id") == "" {
			continue
		}
		level, _ := r.int("level")
		out = append(out, HierarchyNode{
			ID:       r.str("id"),
			Name:     r.str("name"),
			ParentID: r.str("parent_id"),
			Level:    level,
			Type:     r.str("type"),
		})
	}
	return out
}

func (l *Loader) interval(r record) Interval {
	start, _ := r.date("start_date")
	return Interval{
		RecordID:   r.str("record_id"),
		EmployeeID: r.str("employee_id"),
		Start:      start,
		End:        r.dateRef("end_date"),
	}
}

func (l *Loader) parseDepartmentHistory(ctx context.Context, rows []record) []DepartmentAssignment {
	out := make([]DepartmentAssignment, 0, len(rows))
	for _, r := range rows {
		if r.str("employee_id") == "" || r.str("department_id") == "" {
			continue
		}
		dur, _ := r.float("duration_days")
		out = append(out, DepartmentAssignment{
			Interval:     l.interval(r),
			DepartmentID: r.str("department_id"),
			Title:        r.str("title"),
			DurationDays: dur,
		})
	}
	return out
}

func (l *Loader) parseJobHistory(ctx context.Context, rows []record) []JobAssignment {
	out := make([]JobAssignment, 0, len(rows))
	for _, r := range rows {
		if r.str("employee_id") == "" || r.str("job_id") == "" {
			continue
		}
		out = append(out, JobAssignment{
			Interval: l.interval(r),
			JobID:    r.str("job_id"),
		})
	}
	return out
}

func (l *Loader) parsePositions(ctx context.Context, rows []record) []Position {
	out := make([]Position, 0, len(rows))
	for _, r := range rows {
		if r.str("id") == "" {
			continue
		}
		out = append(out, Position{ID: r.str("id"), Name: r.str("name")})
	}
	return out
}

func (l *Loader) parsePositionHistory(ctx context.Context, rows []record) []GradeAssignment {
	out := make([]GradeAssignment, 0, len(rows))
	for _, r := range rows {
		if r.str("employee_id") == "" {
			continue
		}
		dur, _ := r.float("duration_days")
		out = append(out, GradeAssignment{
			Interval:     l.interval(r),
			PositionID:   r.str("position_id"),
			GradeID:      r.str("grade_id"),
			ChangeReason: r.str("change_reason"),
			DurationDays: dur,
		})
	}
	return out
}

func (l *Loader) parseSalaryContracts(ctx context.Context, rows []record) []SalaryContract {
	out := make([]SalaryContract, 0, len(rows))
	for _, r := range rows {
		amount, ok := r.float("amount")
		if !ok || r.str("employee_id") == "" {
			continue
		}
		out = append(out, SalaryContract{
			Interval:    l.interval(r),
			PayCategory: strings.ToLower(r.str("pay_category")),
			Amount:      amount,
		})
	}
	return out
}

func (l *Loader) parseSchools(ctx context.Context, rows []record) []School {
	out := make([]School, 0, len(rows))
	for _, r := range rows {
		if r.str("id") == "" {
			continue
		}
		out = append(out, School{ID: r.str("id"), Name: r.str("name"), Level: r.str("level")})
	}
	return out
}

func (l *Loader) parseSchoolHistory(ctx context.Context, rows []record) []SchoolRecord {
	out := make([]SchoolRecord, 0, len(rows))
	for _, r := range rows {
		if r.str("employee_id") == "" {
			continue
		}
		year, _ := r.int("grad_year")
		out = append(out, SchoolRecord{
			RecordID:      r.str("record_id"),
			EmployeeID:    r.str("employee_id"),
			SchoolID:      r.str("school_id"),
			Degree:        r.str("degree"),
			MajorCategory: r.str("major_category"),
			GradYear:      year,
		})
	}
	return out
}

func (l *Loader) parseCareers(ctx context.Context, rows []record) []CareerRecord {
	out := make([]CareerRecord, 0, len(rows))
	for _, r := range rows {
		if r.str("employee_id") == "" {
			continue
		}
		dur, _ := r.float("duration_days")
		out = append(out, CareerRecord{
			RecordID:     r.str("record_id"),
			EmployeeID:   r.str("employee_id"),
			CompanyID:    r.str("company_id"),
			DurationDays: dur,
			Relevant:     r.yes("relevant"),
		})
	}
	return out
}

func (l *Loader) parseProjects(ctx context.Context, rows []record) []ProjectAssignment {
	out := make([]ProjectAssignment, 0, len(rows))
	for _, r := range rows {
		if r.str("employee_id") == "" || r.str("project_id") == "" {
			continue
		}
		dur, _ := r.float("duration_days")
		out = append(out, ProjectAssignment{
			Interval:     l.interval(r),
			ProjectID:    r.str("project_id"),
			DurationDays: dur,
		})
	}
	return out
}

func (l *Loader) parsePayrollYears(ctx context.Context, rows []record) []PayrollYear {
	out := make([]PayrollYear, 0, len(rows))
	for _, r := range rows {
		year, okYear := r.int("year")
		pay, okPay := r.float("total_pay")
		if !okYear || !okPay || r.str("employee_id") == "" {
			l.logger.WarnContext(ctx, "skipping malformed payroll row",
				"employee_id", r.str("employee_id"),
				"year", r.str("year"),
			)
			continue
		}
		growth, _ := r.float("yoy_growth")
		ratio, _ := r.float("variable_pay_ratio")
		out = append(out, PayrollYear{
			EmployeeID:       r.str("employee_id"),
			Year:             year,
			TotalPay:         pay,
			YoYGrowth:        growth,
			VariablePayRatio: ratio,
		})
	}
	return out
}

// ParseEvalPeriod turns a half-year label like "2023H1" into its
// conventional anchor date (June 1 for H1, December 1 for H2).
func ParseEvalPeriod(period string) (time.Time, error) {
	p := strings.ToUpper(strings.TrimSpace(period))
	if len(p) != 6 || (p[4:] != "H1" && p[4:] != "H2") {
		return time.Time{}, fmt.Errorf("invalid evaluation period %q", period)
	}
	year, err := strconv.Atoi(p[:4])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid evaluation period %q", period)
	}
	month := time.June
	if p[4:] == "H2" {
		month = time.December
	}
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC), nil
}

func (l *Loader) parseEvaluations(ctx context.Context, rows []record) []EvaluationScore {
	out := make([]EvaluationScore, 0, len(rows))
	for _, r := range rows {
		score, ok := r.float("score")
		if !ok || r.str("employee_id") == "" {
			continue
		}
		date, err := ParseEvalPeriod(r.str("period"))
		if err != nil {
			l.logger.WarnContext(ctx, "skipping evaluation with bad period",
				"employee_id", r.str("employee_id"),
				"period", r.str("period"),
			)
			continue
		}
		out = append(out, EvaluationScore{
			EmployeeID: r.str("employee_id"),
			Period:     r.str("period"),
			Date:       date,
			Score:      score,
		})
	}
	return out
}

func (l *Loader) parseAttendance(ctx context.Context, rows []record) []AttendanceDay {
	out := make([]AttendanceDay, 0, len(rows))
	for _, r := range rows {
		date, ok := r.date("date")
		if !ok || r.str("employee_id") == "" {
			continue
		}
		overtime, _ := r.float("overtime_minutes")
		night, _ := r.float("night_work_minutes")
		out = append(out, AttendanceDay{
			EmployeeID:       r.str("employee_id"),
			Date:             date,
			OvertimeMinutes:  overtime,
			NightWorkMinutes: night,
		})
	}
	return out
}

func (l *Loader) parseLeaveTypes(ctx context.Context, rows []record) []LeaveType {
	out := make([]LeaveType, 0, len(rows))
	for _, r := range rows {
		if r.str("id") == "" {
			continue
		}
		out = append(out, LeaveType{ID: r.str("id"), Name: r.str("name")})
	}
	return out
}

func (l *Loader) parseLeaves(ctx context.Context, rows []record) []LeaveRecord {
	out := make([]LeaveRecord, 0, len(rows))
	for _, r := range rows {
		length, ok := r.float("length_days")
		if !ok || r.str("employee_id") == "" {
			continue
		}
		start, _ := r.date("start_date")
		out = append(out, LeaveRecord{
			EmployeeID:  r.str("employee_id"),
			LeaveTypeID: r.str("leave_type_id"),
			Start:       start,
			LengthDays:  length,
		})
	}
	return out
}

func (l *Loader) parseAbsences(ctx context.Context, rows []record) []AbsenceRecord {
	out := make([]AbsenceRecord, 0, len(rows))
	for _, r := range rows {
		dur, ok := r.float("duration_days")
		if !ok || r.str("employee_id") == "" {
			continue
		}
		out = append(out, AbsenceRecord{
			RecordID:     r.str("record_id"),
			EmployeeID:   r.str("employee_id"),
			DurationDays: dur,
		})
	}
	return out
}
