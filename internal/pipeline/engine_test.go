package pipeline

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrpulse/internal/hrdata"
)

// testDataset builds a small but fully joined dataset: three active
// employees, one leaver, with history across every block the engine
// aggregates.
func testDataset() *hrdata.Dataset {
	sep := date(2022, time.September, 30)
	return &hrdata.Dataset{
		Employees: []hrdata.Employee{
			{ID: "E1", PersonalID: "900101-1234567", Name: "Kim", Gender: "F", Nationality: "Korea", HireDate: date(2015, time.April, 1), Active: true},
			{ID: "E2", PersonalID: "850620-1234567", Name: "Lee", Gender: "M", Nationality: "Korea", HireDate: date(2010, time.October, 1), Active: true},
			{ID: "E3", PersonalID: "920315-2234567", Name: "Park", Gender: "F", Nationality: "Other", HireDate: date(2019, time.January, 15), SeparationDate: &sep, Active: false},
			{ID: "E4", PersonalID: "880808-1234567", Name: "Choi", Gender: "M", Nationality: "Korea", HireDate: date(2012, time.June, 1), Active: true},
		},
		Departments: []hrdata.HierarchyNode{
			{ID: "D1", Name: "Corporate Division"},
			{ID: "D2", Name: "Seoul Office", ParentID: "D1", Type: "HQ"},
			{ID: "D3", Name: "Engineering Team", ParentID: "D2"},
		},
		DepartmentHistory: []hrdata.DepartmentAssignment{
			{Interval: hrdata.Interval{RecordID: "DH1", EmployeeID: "E1", Start: date(2015, time.April, 1)}, DepartmentID: "D3", Title: "Engineer", DurationDays: 3000},
			{Interval: hrdata.Interval{RecordID: "DH2", EmployeeID: "E2", Start: date(2010, time.October, 1)}, DepartmentID: "D2", Title: "Manager", DurationDays: 4000},
			{Interval: hrdata.Interval{RecordID: "DH3", EmployeeID: "E3", Start: date(2019, time.January, 15), End: &sep}, DepartmentID: "D3", Title: "Analyst", DurationDays: 1354},
		},
		Jobs: []hrdata.HierarchyNode{
			{ID: "J1", Name: "Technology", Level: 1},
			{ID: "J2", Name: "Software", ParentID: "J1", Level: 2},
			{ID: "J3", Name: "Backend", ParentID: "J2", Level: 3},
		},
		JobHistory: []hrdata.JobAssignment{
			{Interval: hrdata.Interval{RecordID: "JH1", EmployeeID: "E1", Start: date(2015, time.April, 1)}, JobID: "J3"},
			{Interval: hrdata.Interval{RecordID: "JH2", EmployeeID: "E2", Start: date(2010, time.October, 1)}, JobID: "J2"},
		},
		SalaryContracts: []hrdata.SalaryContract{
			{Interval: hrdata.Interval{RecordID: "SC1", EmployeeID: "E1", Start: date(2023, time.April, 1)}, PayCategory: hrdata.PayMonthly, Amount: 400000},
		},
		Careers: []hrdata.CareerRecord{
			{RecordID: "C1", EmployeeID: "E2", CompanyID: "ACME", DurationDays: 730, Relevant: true},
		},
		PayrollYears: []hrdata.PayrollYear{
			{EmployeeID: "E1", Year: 2022, TotalPay: 5200000, YoYGrowth: 4, VariablePayRatio: 0.15},
			{EmployeeID: "E1", Year: 2023, TotalPay: 5400000, YoYGrowth: 4, VariablePayRatio: 0.16},
			{EmployeeID: "E2", Year: 2023, TotalPay: 7000000, YoYGrowth: 2, VariablePayRatio: 0.25},
		},
		Evaluations: []hrdata.EvaluationScore{
			{EmployeeID: "E1", Period: "2023H1", Date: date(2023, time.June, 1), Score: 3.8},
			{EmployeeID: "E1", Period: "2023H2", Date: date(2023, time.December, 1), Score: 4.1},
			{EmployeeID: "E2", Period: "2023H2", Date: date(2023, time.December, 1), Score: 3.2},
		},
		Attendance: []hrdata.AttendanceDay{
			{EmployeeID: "E1", Date: date(2023, time.November, 6), OvertimeMinutes: 90, NightWorkMinutes: 0},
			{EmployeeID: "E1", Date: date(2023, time.November, 7), OvertimeMinutes: 30, NightWorkMinutes: 15},
		},
		LeaveTypes: []hrdata.LeaveType{
			{ID: "LT1", Name: "Annual Leave"},
			{ID: "LT2", Name: hrdata.SickLeaveTypeName},
		},
		Leaves: []hrdata.LeaveRecord{
			{EmployeeID: "E1", LeaveTypeID: "LT1", Start: date(2023, time.August, 1), LengthDays: 5},
			{EmployeeID: "E1", LeaveTypeID: "LT2", Start: date(2023, time.October, 10), LengthDays: 2},
		},
		Absences: []hrdata.AbsenceRecord{
			{RecordID: "A1", EmployeeID: "E3", DurationDays: 3},
		},
	}
}

func TestEngineBuild(t *testing.T) {
	e := testEngine(date(2024, time.January, 1))
	result, err := e.Build(context.Background(), testDataset())
	require.NoError(t, err)

	table := result.Table
	require.Len(t, table.Rows, 4)
	assert.Equal(t, []string{"E1", "E2", "E3", "E4"}, table.EmployeeIDs)
	assert.Equal(t, []float64{0, 0, 1, 0}, table.Leaver)
	assert.Equal(t, []bool{true, true, false, true}, table.Active)
	assert.NotEmpty(t, table.Schema.Version)
	for _, row := range table.Rows {
		assert.Len(t, row, table.NumFeatures())
	}

	require.Len(t, result.Profiles, 4)
	byID := make(map[string]EmployeeProfile)
	for _, p := range result.Profiles {
		byID[p.EmployeeID] = p
	}
	assert.Equal(t, "Corporate Division", byID["E1"].Division)
	assert.Equal(t, "Seoul Office", byID["E1"].Office)
	assert.Equal(t, "Technology", byID["E1"].JobFamily)
	assert.Equal(t, LocationOffsite, byID["E1"].WorkLocation)
	assert.Equal(t, LocationHQ, byID["E2"].WorkLocation)
	assert.True(t, byID["E2"].ExperiencedHire)
	assert.False(t, byID["E1"].ExperiencedHire)
	// Monthly 400000 contract annualizes to 4.8M.
	require.NotNil(t, byID["E1"].ContractAnnualSalary)
	assert.InDelta(t, 4800000, *byID["E1"].ContractAnnualSalary, 1e-6)
	// No history at all leaves the profile at its defaults.
	assert.Equal(t, Unknown, byID["E4"].Division)
	assert.Nil(t, byID["E4"].ContractAnnualSalary)
	assert.Nil(t, byID["E4"].DaysInDepartment)
}

func TestProfilesEncodeWithoutHistory(t *testing.T) {
	e := testEngine(date(2024, time.January, 1))
	result, err := e.Build(context.Background(), testDataset())
	require.NoError(t, err)

	// An employee with no contract or department history must still
	// produce a JSON-encodable profile.
	raw, err := json.Marshal(result.Profiles)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"employee_id":"E4"`)
	assert.NotContains(t, string(raw), "NaN")
}

func TestEngineBuildDeterministic(t *testing.T) {
	params := Params{AsOf: date(2024, time.January, 1), PatchOutliers: true, Seed: 7}
	first, err := NewEngine(params, discardTestLogger()).Build(context.Background(), testDataset())
	require.NoError(t, err)
	second, err := NewEngine(params, discardTestLogger()).Build(context.Background(), testDataset())
	require.NoError(t, err)

	assert.Equal(t, first.Table.Schema.Version, second.Table.Schema.Version)
	assert.Equal(t, first.Table.Columns, second.Table.Columns)
	assert.Equal(t, first.Table.Rows, second.Table.Rows)
}

func TestEngineBuildSkipsInvalidAndDuplicateRows(t *testing.T) {
	ds := testDataset()
	ds.Employees = append(ds.Employees,
		hrdata.Employee{ID: "", HireDate: date(2020, time.January, 1)},
		hrdata.Employee{ID: "E1", PersonalID: "700101-1234567", HireDate: date(2001, time.January, 1), Active: true},
	)

	e := testEngine(date(2024, time.January, 1))
	result, err := e.Build(context.Background(), ds)
	require.NoError(t, err)
	require.Len(t, result.Table.Rows, 4)

	// The duplicate E1 row must not overwrite the original hire date.
	require.Len(t, result.Profiles, 4)
	assert.Equal(t, date(2015, time.April, 1), result.Profiles[0].HireDate)
}

func TestEngineBuildEmptyDataset(t *testing.T) {
	e := testEngine(date(2024, time.January, 1))
	_, err := e.Build(context.Background(), &hrdata.Dataset{})
	assert.ErrorIs(t, err, hrdata.ErrNoEmployees)
}

func TestAnnualFromContract(t *testing.T) {
	tests := []struct {
		name     string
		category string
		amount   float64
		want     float64
	}{
		{"monthly", hrdata.PayMonthly, 400000, 4800000},
		{"weekly", hrdata.PayWeekly, 100000, 5200000},
		{"daily", hrdata.PayDaily, 20000, 5000000},
		{"hourly", hrdata.PayHourly, 2500, 5200000},
		{"annual passes through", hrdata.PayAnnual, 6000000, 6000000},
		{"rounded to ten thousand", hrdata.PayMonthly, 404321, 4850000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := hrdata.SalaryContract{PayCategory: tt.category, Amount: tt.amount}
			assert.InDelta(t, tt.want, annualFromContract(c), 1e-6)
		})
	}
}

func TestApplyOutlierPatches(t *testing.T) {
	e := NewEngine(Params{AsOf: date(2024, time.January, 1), PatchOutliers: true, Seed: 11}, discardTestLogger())
	e.Build(context.Background(), testDataset())

	features := map[string]*Features{
		"E1": newFeatures("E1"),
		"E2": newFeatures("E2"),
	}
	features["E1"].Overtime1Y = -120
	features["E1"].AvgLeaveDays = 80
	features["E2"].Overtime1Y = 45

	e.applyOutlierPatches(features)

	assert.GreaterOrEqual(t, features["E1"].Overtime1Y, 80.0)
	assert.LessOrEqual(t, features["E1"].Overtime1Y, 120.0)
	assert.GreaterOrEqual(t, features["E1"].AvgLeaveDays, 40.0)
	assert.LessOrEqual(t, features["E1"].AvgLeaveDays, 50.0)
	assert.Equal(t, 45.0, features["E2"].Overtime1Y, "plausible values untouched")
}
