package pipeline

import (
	"math"
	"sort"
	"time"

	"hrpulse/internal/hrdata"
)

// Experience band labels feeding the peer salary comparison.
const (
	band0to2   = "0-2y"
	band3to5   = "3-5y"
	band6to9   = "6-9y"
	band10to14 = "10-14y"
	band15plus = "15y+"
)

// experienceBand buckets total experience years.
func experienceBand(years float64) string {
	switch {
	case math.IsNaN(years):
		return ""
	case years < 3:
		return band0to2
	case years < 6:
		return band3to5
	case years < 10:
		return band6to9
	case years < 15:
		return band10to14
	default:
		return band15plus
	}
}

// applyPayroll aggregates yearly compensation. The current calendar
// year is always incomplete and therefore excluded; the latest retained
// year is annualized for employees hired or separated inside it.
func (e *Engine) applyPayroll(features map[string]*Features, ds *hrdata.Dataset) {
	if len(ds.PayrollYears) == 0 {
		return
	}
	currentYear := e.asOf.Year()
	byEmp := groupBy(ds.PayrollYears, func(p hrdata.PayrollYear) string { return p.EmployeeID })
	for id, recs := range byEmp {
		f, ok := features[id]
		if !ok {
			continue
		}
		emp, hasEmp := e.employees[id]
		var completed []hrdata.PayrollYear
		for _, p := range recs {
			if p.Year < currentYear {
				completed = append(completed, p)
			}
		}
		if len(completed) == 0 {
			continue
		}
		sort.Slice(completed, func(i, j int) bool {
			return completed[i].Year > completed[j].Year
		})
		latest := completed[0]
		if hasEmp {
			f.AnnualPay = annualizePay(latest, emp)
		} else {
			f.AnnualPay = latest.TotalPay
		}

		var growth, variable []float64
		for _, p := range completed {
			growth = append(growth, clip(p.YoYGrowth, -25, 35))
			variable = append(variable, p.VariablePayRatio)
		}
		f.AvgPayGrowth = mean(growth)
		f.AvgVariablePayRatio = mean(variable)
		// Growth over at most one completed year says nothing; zero it
		// for recent hires.
		if hasEmp && emp.HireDate.Year() >= currentYear-1 {
			f.AvgPayGrowth = 0
		}
	}
}

// annualizePay extrapolates a partial pay year to a full one. Hire-year
// pay is scaled by the worked fraction of that year; a separation-year
// amount is scaled over the days up to separation. Anything else is a
// complete year and passes through untouched.
func annualizePay(p hrdata.PayrollYear, emp hrdata.Employee) float64 {
	sep := emp.SeparationDate
	switch {
	case emp.HireDate.Year() == p.Year:
		end := time.Date(p.Year, 12, 31, 0, 0, 0, 0, time.UTC)
		if sep != nil && sep.Year() == p.Year {
			end = *sep
		}
		days := daysBetween(emp.HireDate, end) + 1
		if days <= 0 {
			return math.NaN()
		}
		return p.TotalPay * 365 / days
	case sep != nil && sep.Year() == p.Year:
		jan1 := time.Date(p.Year, 1, 1, 0, 0, 0, 0, time.UTC)
		days := daysBetween(jan1, *sep) + 1
		if days <= 0 {
			return math.NaN()
		}
		return p.TotalPay * 365 / days
	default:
		return p.TotalPay
	}
}

// applyExperience derives total experience years and the experience
// band. Runs after career and basic blocks.
func (e *Engine) applyExperience(features map[string]*Features) {
	for _, f := range features {
		prior := f.PriorCareerDays
		if math.IsNaN(prior) {
			prior = 0
		}
		if math.IsNaN(f.TenureDays) {
			continue
		}
		f.TotalExperienceYears = (f.TenureDays + prior) / DaysPerYear
	}
}

// applySalaryBands positions every employee's annualized pay within the
// peer group sharing the same experience band and job family. Groups of
// one employee carry too little signal and are marked "no data".
func (e *Engine) applySalaryBands(features map[string]*Features) {
	type peerKey struct {
		band   string
		family string
	}
	groups := make(map[peerKey][]*Features)
	for _, f := range features {
		band := experienceBand(f.TotalExperienceYears)
		if band == "" || f.JobFamily == "" {
			continue
		}
		k := peerKey{band: band, family: f.JobFamily}
		groups[k] = append(groups[k], f)
	}
	for _, members := range groups {
		var pays []float64
		for _, f := range members {
			if !math.IsNaN(f.AnnualPay) {
				pays = append(pays, f.AnnualPay)
			}
		}
		if len(pays) < 2 {
			for _, f := range members {
				f.SalaryBand = BandNoData
			}
			continue
		}
		p30 := quantile(pays, 0.30)
		p70 := quantile(pays, 0.70)
		for _, f := range members {
			switch {
			case f.AnnualPay >= p70:
				f.SalaryBand = BandAbove
			case f.AnnualPay < p30:
				f.SalaryBand = BandBelow
			default:
				f.SalaryBand = BandMid
			}
		}
	}
}
