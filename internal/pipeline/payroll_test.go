package pipeline

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrpulse/internal/hrdata"
)

func TestExperienceBand(t *testing.T) {
	tests := []struct {
		years float64
		want  string
	}{
		{0, band0to2},
		{2.9, band0to2},
		{3, band3to5},
		{5.9, band3to5},
		{6, band6to9},
		{9.9, band6to9},
		{10, band10to14},
		{14.9, band10to14},
		{15, band15plus},
		{40, band15plus},
		{math.NaN(), ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, experienceBand(tt.years))
	}
}

func TestAnnualizePay(t *testing.T) {
	sep := date(2023, time.June, 30)

	tests := []struct {
		name string
		pay  hrdata.PayrollYear
		emp  hrdata.Employee
		want float64
	}{
		{
			name: "complete year passes through",
			pay:  hrdata.PayrollYear{Year: 2022, TotalPay: 5000000},
			emp:  hrdata.Employee{HireDate: date(2018, time.April, 1)},
			want: 5000000,
		},
		{
			name: "hire year scaled up",
			pay:  hrdata.PayrollYear{Year: 2022, TotalPay: 1000000},
			emp:  hrdata.Employee{HireDate: date(2022, time.October, 1)},
			// Oct 1 to Dec 31 inclusive is 92 days.
			want: 1000000 * 365 / 92,
		},
		{
			name: "separation year scaled up",
			pay:  hrdata.PayrollYear{Year: 2023, TotalPay: 2500000},
			emp:  hrdata.Employee{HireDate: date(2015, time.April, 1), SeparationDate: &sep},
			// Jan 1 to Jun 30 inclusive is 181 days.
			want: 2500000 * 365 / 181,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, annualizePay(tt.pay, tt.emp), 1e-6)
		})
	}
}

func TestApplyPayrollExcludesCurrentYear(t *testing.T) {
	e := testEngine(date(2024, time.March, 1))
	emp := hrdata.Employee{ID: "E1", HireDate: date(2018, time.April, 1), Active: true}
	e.employees = map[string]hrdata.Employee{"E1": emp}

	features := map[string]*Features{"E1": newFeatures("E1")}
	ds := &hrdata.Dataset{
		PayrollYears: []hrdata.PayrollYear{
			{EmployeeID: "E1", Year: 2022, TotalPay: 4800000, YoYGrowth: 3, VariablePayRatio: 0.1},
			{EmployeeID: "E1", Year: 2023, TotalPay: 5000000, YoYGrowth: 4, VariablePayRatio: 0.2},
			{EmployeeID: "E1", Year: 2024, TotalPay: 900000, YoYGrowth: 99, VariablePayRatio: 0.9},
		},
	}
	e.applyPayroll(features, ds)

	f := features["E1"]
	assert.InDelta(t, 5000000, f.AnnualPay, 1e-6, "latest completed year wins")
	assert.InDelta(t, 3.5, f.AvgPayGrowth, 1e-9)
	assert.InDelta(t, 0.15, f.AvgVariablePayRatio, 1e-9)
}

func TestApplyPayrollGrowthClippedAndZeroedForRecentHires(t *testing.T) {
	e := testEngine(date(2024, time.March, 1))
	recent := hrdata.Employee{ID: "E2", HireDate: date(2023, time.May, 1), Active: true}
	veteran := hrdata.Employee{ID: "E3", HireDate: date(2010, time.January, 15), Active: true}
	e.employees = map[string]hrdata.Employee{"E2": recent, "E3": veteran}

	features := map[string]*Features{
		"E2": newFeatures("E2"),
		"E3": newFeatures("E3"),
	}
	ds := &hrdata.Dataset{
		PayrollYears: []hrdata.PayrollYear{
			{EmployeeID: "E2", Year: 2023, TotalPay: 3000000, YoYGrowth: 12},
			{EmployeeID: "E3", Year: 2023, TotalPay: 6000000, YoYGrowth: 80},
		},
	}
	e.applyPayroll(features, ds)

	assert.Equal(t, 0.0, features["E2"].AvgPayGrowth, "single partial year carries no growth signal")
	assert.InDelta(t, 35.0, features["E3"].AvgPayGrowth, 1e-9, "growth clipped to the cap")
}

func TestApplySalaryBands(t *testing.T) {
	e := testEngine(date(2024, time.January, 1))

	features := make(map[string]*Features)
	pays := []float64{100, 200, 300, 400, 500}
	for i, pay := range pays {
		f := newFeatures(string(rune('A' + i)))
		f.TotalExperienceYears = 4
		f.JobFamily = "Technology"
		f.AnnualPay = pay
		features[f.EmployeeID] = f
	}
	// A lone peer group gets no banding signal.
	solo := newFeatures("Z")
	solo.TotalExperienceYears = 20
	solo.JobFamily = "Legal"
	solo.AnnualPay = 999
	features["Z"] = solo

	e.applySalaryBands(features)

	assert.Equal(t, BandBelow, features["A"].SalaryBand)
	assert.Equal(t, BandMid, features["C"].SalaryBand)
	assert.Equal(t, BandAbove, features["E"].SalaryBand)
	assert.Equal(t, BandNoData, features["Z"].SalaryBand)
}

func TestApplyExperience(t *testing.T) {
	features := map[string]*Features{"E1": newFeatures("E1"), "E2": newFeatures("E2")}
	features["E1"].TenureDays = 2 * DaysPerYear
	features["E1"].PriorCareerDays = 3 * DaysPerYear
	features["E2"].TenureDays = DaysPerYear
	// E2 has no prior career; NaN must count as zero.

	e := testEngine(date(2024, time.January, 1))
	e.applyExperience(features)

	require.InDelta(t, 5.0, features["E1"].TotalExperienceYears, 1e-9)
	require.InDelta(t, 1.0, features["E2"].TotalExperienceYears, 1e-9)
}
