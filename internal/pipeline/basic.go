package pipeline

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"hrpulse/internal/hrdata"
)

// decodeBirthDate extracts the birth date packed into a structured
// personal id: YYMMDD in the first six digits, the century encoded by
// the seventh-index digit (1/2 → 1900s, 3/4 → 2000s).
func decodeBirthDate(personalID string) (time.Time, error) {
	if len(personalID) < 8 {
		return time.Time{}, fmt.Errorf("personal id too short: %q", personalID)
	}
	var century int
	switch personalID[7] {
	case '1', '2':
		century = 1900
	case '3', '4':
		century = 2000
	default:
		return time.Time{}, fmt.Errorf("unrecognized century digit %q", personalID[7])
	}
	yy, err := strconv.Atoi(personalID[0:2])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid year digits: %w", err)
	}
	mm, err := strconv.Atoi(personalID[2:4])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month digits: %w", err)
	}
	dd, err := strconv.Atoi(personalID[4:6])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day digits: %w", err)
	}
	birth := time.Date(century+yy, time.Month(mm), dd, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes out-of-range components, so round-trip check.
	if birth.Year() != century+yy || int(birth.Month()) != mm || birth.Day() != dd {
		return time.Time{}, fmt.Errorf("impossible date in personal id %q", personalID)
	}
	return birth, nil
}

// ageAt computes completed years between birth and the reference date.
func ageAt(birth, ref time.Time) float64 {
	years := ref.Year() - birth.Year()
	if ref.Month() < birth.Month() ||
		(ref.Month() == birth.Month() && ref.Day() < birth.Day()) {
		years--
	}
	return float64(years)
}

// applyBasic fills the demographic block for one employee.
func (e *Engine) applyBasic(f *Features, emp hrdata.Employee) {
	f.Active = emp.Active
	if emp.Active {
		f.Leaver = 0
	} else {
		f.Leaver = 1
	}
	f.Gender = emp.Gender
	// Nationality collapses to a binary flag; anything not recorded as
	// Korean counts as Other.
	if emp.Nationality == "Korea" {
		f.Nationality = "Korea"
	} else {
		f.Nationality = "Other"
	}

	end := emp.ReferenceEnd(e.asOf)
	f.TenureDays = daysBetween(emp.HireDate, end)

	birth, err := decodeBirthDate(emp.PersonalID)
	if err != nil {
		e.logger.Warn("could not decode birth date",
			"employee_id", emp.ID, "error", err)
		f.TenureAgeRatio = 0
		return
	}
	f.Age = ageAt(birth, e.asOf)
	f.AgeAtHiring = daysBetween(birth, emp.HireDate) / DaysPerYear
	if f.Age > 0 {
		f.TenureAgeRatio = f.TenureDays / (f.Age * DaysPerYear)
	} else {
		f.TenureAgeRatio = 0
	}
	if math.IsNaN(f.TenureAgeRatio) {
		f.TenureAgeRatio = 0
	}
}
