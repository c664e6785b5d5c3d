package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrpulse/internal/hrdata"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dateRef(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func interval(recordID string, start time.Time, end *time.Time) hrdata.Interval {
	return hrdata.Interval{RecordID: recordID, EmployeeID: "E1", Start: start, End: end}
}

func TestResolveCurrent(t *testing.T) {
	tests := []struct {
		name    string
		records []hrdata.Interval
		active  bool
		wantID  string
		wantOK  bool
	}{
		{
			name:   "empty history",
			active: true,
			wantOK: false,
		},
		{
			name: "active picks open record",
			records: []hrdata.Interval{
				interval("R1", date(2019, 1, 1), dateRef(2021, 3, 31)),
				interval("R2", date(2021, 4, 1), nil),
			},
			active: true,
			wantID: "R2",
			wantOK: true,
		},
		{
			name: "active with two open records picks smallest id",
			records: []hrdata.Interval{
				interval("R9", date(2021, 4, 1), nil),
				interval("R2", date(2020, 1, 1), nil),
			},
			active: true,
			wantID: "R2",
			wantOK: true,
		},
		{
			name: "active with no open record",
			records: []hrdata.Interval{
				interval("R1", date(2019, 1, 1), dateRef(2021, 3, 31)),
			},
			active: true,
			wantOK: false,
		},
		{
			name: "separated picks greatest end date",
			records: []hrdata.Interval{
				interval("R1", date(2018, 1, 1), dateRef(2020, 6, 30)),
				interval("R2", date(2020, 7, 1), dateRef(2022, 12, 31)),
			},
			active: false,
			wantID: "R2",
			wantOK: true,
		},
		{
			name: "separated prefers closed over open",
			records: []hrdata.Interval{
				interval("R1", date(2018, 1, 1), dateRef(2020, 6, 30)),
				interval("R2", date(2020, 7, 1), nil),
			},
			active: false,
			wantID: "R1",
			wantOK: true,
		},
		{
			name: "separated end-date tie breaks on id",
			records: []hrdata.Interval{
				interval("R5", date(2018, 1, 1), dateRef(2020, 6, 30)),
				interval("R3", date(2019, 1, 1), dateRef(2020, 6, 30)),
			},
			active: false,
			wantID: "R3",
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveCurrent(tt.records, tt.active)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantID, got.RecordID)
			}
		})
	}
}

func TestLatestByStart(t *testing.T) {
	records := []hrdata.Interval{
		interval("R1", date(2018, 1, 1), dateRef(2020, 6, 30)),
		interval("R2", date(2021, 4, 1), dateRef(2022, 3, 31)),
		interval("R3", date(2021, 4, 1), nil),
	}

	got, ok := LatestByStart(records)
	require.True(t, ok)
	// Same start date, R2 wins on id.
	assert.Equal(t, "R2", got.RecordID)

	_, ok = LatestByStart([]hrdata.Interval{})
	assert.False(t, ok)
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 0.0, daysBetween(date(2023, 1, 1), date(2023, 1, 1)))
	assert.Equal(t, 31.0, daysBetween(date(2023, 1, 1), date(2023, 2, 1)))
	assert.Equal(t, 365.0, daysBetween(date(2023, 1, 1), date(2024, 1, 1)))
}

func TestGroupBy(t *testing.T) {
	records := []hrdata.CareerRecord{
		{RecordID: "C1", EmployeeID: "E1"},
		{RecordID: "C2", EmployeeID: "E2"},
		{RecordID: "C3", EmployeeID: "E1"},
	}
	grouped := groupBy(records, func(c hrdata.CareerRecord) string { return c.EmployeeID })

	require.Len(t, grouped, 2)
	require.Len(t, grouped["E1"], 2)
	assert.Equal(t, "C1", grouped["E1"][0].RecordID)
	assert.Equal(t, "C3", grouped["E1"][1].RecordID)
}
