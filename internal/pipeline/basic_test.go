package pipeline

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrpulse/internal/hrdata"
)

func discardTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testEngine(asOf time.Time) *Engine {
	return NewEngine(Params{AsOf: asOf}, discardTestLogger())
}

func TestDecodeBirthDate(t *testing.T) {
	tests := []struct {
		name       string
		personalID string
		want       time.Time
		wantErr    bool
	}{
		{
			name:       "nineties birth",
			personalID: "900512-1234567",
			want:       date(1990, time.May, 12),
		},
		{
			name:       "female century digit",
			personalID: "851130-2345678",
			want:       date(1985, time.November, 30),
		},
		{
			name:       "two thousands birth",
			personalID: "010203-3456789",
			want:       date(2001, time.February, 3),
		},
		{
			name:       "too short",
			personalID: "900512",
			wantErr:    true,
		},
		{
			name:       "bad century digit",
			personalID: "900512-9234567",
			wantErr:    true,
		},
		{
			name:       "impossible month",
			personalID: "901301-1234567",
			wantErr:    true,
		},
		{
			name:       "impossible day",
			personalID: "900230-1234567",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeBirthDate(tt.personalID)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAgeAt(t *testing.T) {
	birth := date(1990, time.June, 15)

	assert.Equal(t, 34.0, ageAt(birth, date(2024, time.June, 15)), "birthday itself counts")
	assert.Equal(t, 35.0, ageAt(birth, date(2024, time.June, 15).AddDate(1, 0, 0)))
	assert.Equal(t, 34.0, ageAt(birth, date(2024, time.December, 1)))
	assert.Equal(t, 32.0, ageAt(birth, date(2023, time.June, 14)), "day before birthday")
}

func TestApplyBasic(t *testing.T) {
	asOf := date(2024, time.January, 1)
	e := testEngine(asOf)

	emp := hrdata.Employee{
		ID:          "E1",
		PersonalID:  "900101-1234567",
		Gender:      "F",
		Nationality: "Korea",
		HireDate:    date(2015, time.April, 1),
		Active:      true,
	}
	f := newFeatures("E1")
	e.applyBasic(f, emp)

	assert.Equal(t, 0.0, f.Leaver)
	assert.Equal(t, "F", f.Gender)
	assert.Equal(t, "Korea", f.Nationality)
	assert.Equal(t, 34.0, f.Age)
	assert.InDelta(t, daysBetween(date(2015, time.April, 1), asOf), f.TenureDays, 1e-9)
	assert.InDelta(t, f.TenureDays/(34*DaysPerYear), f.TenureAgeRatio, 1e-9)
	assert.InDelta(t, 25.25, f.AgeAtHiring, 0.1)
}

func TestApplyBasicLeaverUsesSeparationDate(t *testing.T) {
	asOf := date(2024, time.January, 1)
	e := testEngine(asOf)
	sep := date(2020, time.June, 30)

	emp := hrdata.Employee{
		ID:             "E2",
		PersonalID:     "880715-2234567",
		Nationality:    "Brazil",
		HireDate:       date(2010, time.October, 1),
		SeparationDate: &sep,
		Active:         false,
	}
	f := newFeatures("E2")
	e.applyBasic(f, emp)

	assert.Equal(t, 1.0, f.Leaver)
	assert.Equal(t, "Other", f.Nationality)
	assert.InDelta(t, daysBetween(emp.HireDate, sep), f.TenureDays, 1e-9)
}

func TestApplyBasicUndecodablePersonalID(t *testing.T) {
	e := testEngine(date(2024, time.January, 1))

	emp := hrdata.Employee{
		ID:         "E3",
		PersonalID: "???",
		HireDate:   date(2020, time.January, 1),
		Active:     true,
	}
	f := newFeatures("E3")
	e.applyBasic(f, emp)

	// Tenure still computes; age stays missing and the ratio falls back
	// to zero instead of NaN.
	assert.False(t, f.TenureDays != f.TenureDays)
	assert.True(t, f.Age != f.Age)
	assert.Equal(t, 0.0, f.TenureAgeRatio)
}
