package attribution

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrpulse/internal/model"
	"hrpulse/internal/pipeline"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// trainedFixture builds a feature table whose first two features drive
// the label and a model trained on it.
func trainedFixture(t *testing.T) (*pipeline.FeatureTable, *model.GBT) {
	t.Helper()
	table := &pipeline.FeatureTable{
		Columns: []string{"overtime", "tenure", "noise"},
		Schema:  pipeline.EncodingSchema{Version: "fixture"},
	}
	for i := 0; i < 30; i++ {
		leaver := 0.0
		row := []float64{20, float64(2000 + i*10), float64(i % 3)}
		if i < 8 {
			leaver = 1
			row[0] = 150
			row[1] = float64(200 + i*10)
		}
		table.EmployeeIDs = append(table.EmployeeIDs, fmt.Sprintf("E%02d", i))
		table.Active = append(table.Active, leaver == 0)
		table.Leaver = append(table.Leaver, leaver)
		table.Rows = append(table.Rows, row)
	}

	params := model.DefaultParams()
	params.Rounds = 25
	params.MinChildWeight = 0.1
	m, err := model.Train(context.Background(), table, params, testLogger())
	require.NoError(t, err)
	return table, m
}

func TestNewExplainerValidation(t *testing.T) {
	table, m := trainedFixture(t)

	_, err := NewExplainer(context.Background(), nil, table, DefaultConfig(), testLogger())
	assert.Error(t, err)

	empty := &pipeline.FeatureTable{Schema: pipeline.EncodingSchema{Version: "fixture"}}
	_, err = NewExplainer(context.Background(), m, empty, DefaultConfig(), testLogger())
	assert.Error(t, err)

	mismatched := &pipeline.FeatureTable{
		Columns:     table.Columns,
		EmployeeIDs: table.EmployeeIDs,
		Rows:        table.Rows,
		Schema:      pipeline.EncodingSchema{Version: "other"},
	}
	_, err = NewExplainer(context.Background(), m, mismatched, DefaultConfig(), testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema mismatch")
}

func TestExplainAdditivity(t *testing.T) {
	table, m := trainedFixture(t)
	e, err := NewExplainer(context.Background(), m, table, DefaultConfig(), testLogger())
	require.NoError(t, err)

	for i, row := range table.Rows {
		exp := e.Explain(row)
		var total float64
		for _, c := range exp.Contributions {
			total += c
		}
		assert.InDelta(t, exp.Risk, exp.Base+total, 1e-9,
			"row %d: base plus contributions must equal risk", i)
		assert.InDelta(t, m.PredictProb(row)*100, exp.Risk, 1e-9)
		assert.Len(t, exp.Contributions, table.NumFeatures())
	}
}

func TestExplainHighRiskDrivenByActiveFeatures(t *testing.T) {
	table, m := trainedFixture(t)
	e, err := NewExplainer(context.Background(), m, table, DefaultConfig(), testLogger())
	require.NoError(t, err)

	// Row 0 is a leaver-profile row; its risk sits above the base rate
	// and the push comes from the predictive features, not the noise
	// column the trees never split on usefully.
	exp := e.Explain(table.Rows[0])
	assert.Greater(t, exp.Risk, exp.Base)

	driving := math.Abs(exp.Contributions[0]) + math.Abs(exp.Contributions[1])
	assert.Greater(t, driving, math.Abs(exp.Contributions[2]))
}

func TestExplainDeterministic(t *testing.T) {
	table, m := trainedFixture(t)
	cfg := DefaultConfig()
	first, err := NewExplainer(context.Background(), m, table, cfg, testLogger())
	require.NoError(t, err)
	second, err := NewExplainer(context.Background(), m, table, cfg, testLogger())
	require.NoError(t, err)

	a := first.Explain(table.Rows[3])
	b := second.Explain(table.Rows[3])
	assert.Equal(t, a, b)
}

func TestExplainEmployee(t *testing.T) {
	table, m := trainedFixture(t)
	e, err := NewExplainer(context.Background(), m, table, DefaultConfig(), testLogger())
	require.NoError(t, err)

	att, ok := e.ExplainEmployee(table, "E03")
	require.True(t, ok)
	assert.Equal(t, "E03", att.EmployeeID)
	require.Len(t, att.Contributions, table.NumFeatures())
	for i := 1; i < len(att.Contributions); i++ {
		assert.GreaterOrEqual(t,
			math.Abs(att.Contributions[i-1].Value),
			math.Abs(att.Contributions[i].Value),
			"contributions sorted by absolute value")
	}

	_, ok = e.ExplainEmployee(table, "GHOST")
	assert.False(t, ok)
}

func TestSampleRows(t *testing.T) {
	rows := [][]float64{{1}, {2}, {3}, {4}, {5}}

	// Fewer rows than requested passes through untouched.
	assert.Equal(t, rows, sampleRows(rows, 10, 42))
	assert.Equal(t, rows, sampleRows(rows, 0, 42))

	sampled := sampleRows(rows, 3, 42)
	require.Len(t, sampled, 3)
	again := sampleRows(rows, 3, 42)
	assert.Equal(t, sampled, again, "seeded sample is stable")
}

func TestBinomial(t *testing.T) {
	assert.Equal(t, 1.0, binomial(4, 0))
	assert.Equal(t, 6.0, binomial(4, 2))
	assert.Equal(t, 4.0, binomial(4, 3))
	assert.Equal(t, 0.0, binomial(3, 5))
}
