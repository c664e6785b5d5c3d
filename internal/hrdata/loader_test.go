package hrdata

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoadMissingEmployeeSpine(t *testing.T) {
	loader := NewLoader(t.TempDir(), discardLogger())

	_, err := loader.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoEmployees)
}

func TestLoadEmployeesAndOptionalTables(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, FileEmployees,
		"id,personal_id,name,gender,nationality,hire_date,separation_date,active\n"+
			"E001,P001,Alice,F,JP,2015-04-01,,Y\n"+
			"E002,P002,Bob,M,US,2018-10-15,2023-06-30,N\n"+
			",P003,NoID,M,JP,2019-01-01,,Y\n"+
			"E004,P004,BadDate,F,JP,not-a-date,,Y\n")
	writeCSV(t, dir, FilePayrollYears,
		"employee_id,year,total_pay,yoy_growth,variable_pay_ratio\n"+
			"E001,2022,5200000,0.04,0.18\n"+
			"E001,bad-year,100,0,0\n")
	writeCSV(t, dir, FileLeaveTypes,
		"id,name\nLT1,Annual Leave\nLT2,Sick Leave\n")

	loader := NewLoader(dir, discardLogger())
	ds, err := loader.Load(context.Background())
	require.NoError(t, err)

	// Malformed employee rows are dropped, valid ones kept.
	require.Len(t, ds.Employees, 2)
	assert.Equal(t, "E001", ds.Employees[0].ID)
	assert.True(t, ds.Employees[0].Active)
	assert.Nil(t, ds.Employees[0].SeparationDate)
	require.NotNil(t, ds.Employees[1].SeparationDate)
	assert.Equal(t, 2023, ds.Employees[1].SeparationDate.Year())
	assert.False(t, ds.Employees[1].Active)

	require.Len(t, ds.PayrollYears, 1)
	assert.Equal(t, 2022, ds.PayrollYears[0].Year)
	assert.InDelta(t, 5200000, ds.PayrollYears[0].TotalPay, 1e-9)

	// Missing optional files come back empty, not as errors.
	assert.Empty(t, ds.Attendance)
	assert.Empty(t, ds.Leaves)

	assert.Equal(t, "LT2", ds.SickLeaveTypeID())
}

func TestParseEvalPeriod(t *testing.T) {
	tests := []struct {
		name    string
		period  string
		want    time.Time
		wantErr bool
	}{
		{
			name:   "first half",
			period: "2023H1",
			want:   time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "second half",
			period: "2023H2",
			want:   time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "lower case accepted",
			period: "2021h1",
			want:   time.Date(2021, time.June, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "bad suffix",
			period:  "2023Q1",
			wantErr: true,
		},
		{
			name:    "empty",
			period:  "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEvalPeriod(tt.period)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEmployeeReferenceEnd(t *testing.T) {
	asOf := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	sep := time.Date(2022, time.March, 31, 0, 0, 0, 0, time.UTC)

	active := Employee{ID: "E1", HireDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), Active: true}
	assert.Equal(t, asOf, active.ReferenceEnd(asOf))

	leaver := Employee{ID: "E2", HireDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), SeparationDate: &sep}
	assert.Equal(t, sep, leaver.ReferenceEnd(asOf))
}

func TestGradeAssignmentIsPromotion(t *testing.T) {
	initial := GradeAssignment{ChangeReason: InitialAssignment}
	assert.False(t, initial.IsPromotion())

	promo := GradeAssignment{ChangeReason: "Promotion"}
	assert.True(t, promo.IsPromotion())
}

func TestDegreeRank(t *testing.T) {
	assert.Greater(t, DegreeRank(DegreeDoctorate), DegreeRank(DegreeMaster))
	assert.Greater(t, DegreeRank(DegreeMaster), DegreeRank(DegreeBachelor))
	assert.Greater(t, DegreeRank(DegreeBachelor), DegreeRank(DegreeAssociate))
	assert.Equal(t, 0, DegreeRank("Certificate"))
}
