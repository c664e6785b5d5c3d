package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"hrpulse/internal/hrdata"
)

// Params configures one pipeline run.
type Params struct {
	// AsOf is the reference date every age, tenure and window is
	// measured against. Zero means "today".
	AsOf time.Time
	// PatchOutliers enables the seeded replacement of known-bad
	// attendance and leave values.
	PatchOutliers bool
	// Seed drives the outlier patch draws.
	Seed int64
}

// Engine turns a raw dataset into the encoded feature table and the
// display profiles. One engine is built per run; the seeded generator
// is not safe for concurrent Build calls.
type Engine struct {
	asOf          time.Time
	patchOutliers bool
	seed          int64
	rng           *rand.Rand
	logger        *slog.Logger
	employees     map[string]hrdata.Employee
}

// NewEngine creates a feature engine with the given parameters.
func NewEngine(params Params, logger *slog.Logger) *Engine {
	asOf := params.AsOf
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}
	asOf = time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		asOf:          asOf,
		patchOutliers: params.PatchOutliers,
		seed:          params.Seed,
		logger:        logger,
	}
}

// AsOf returns the normalized reference date of this engine.
func (e *Engine) AsOf() time.Time {
	return e.asOf
}

// Result bundles the two assembler outputs.
type Result struct {
	Table    *FeatureTable
	Profiles []EmployeeProfile
}

// Build runs every aggregation block over the dataset and assembles the
// outputs. Blocks whose source table is empty are skipped; their
// columns fall back to the default fill.
func (e *Engine) Build(ctx context.Context, ds *hrdata.Dataset) (*Result, error) {
	if len(ds.Employees) == 0 {
		return nil, hrdata.ErrNoEmployees
	}
	start := time.Now()
	e.rng = rand.New(rand.NewSource(e.seed))

	features := make(map[string]*Features, len(ds.Employees))
	var order []string
	for _, emp := range ds.Employees {
		if !emp.IsValid() {
			e.logger.WarnContext(ctx, "skipping invalid employee row",
				slog.String("employee_id", emp.ID))
			continue
		}
		if _, dup := features[emp.ID]; dup {
			e.logger.WarnContext(ctx, "duplicate employee id, keeping first",
				slog.String("employee_id", emp.ID))
			continue
		}
		f := newFeatures(emp.ID)
		features[emp.ID] = f
		order = append(order, emp.ID)
	}
	if len(order) == 0 {
		return nil, fmt.Errorf("building features: %w", hrdata.ErrNoEmployees)
	}
	e.employees = make(map[string]hrdata.Employee, len(order))
	for _, emp := range ds.Employees {
		if _, ok := features[emp.ID]; ok {
			if _, dup := e.employees[emp.ID]; !dup {
				e.employees[emp.ID] = emp
			}
		}
	}

	e.logger.InfoContext(ctx, "building feature table",
		slog.Int("employees", len(order)),
		slog.Time("as_of", e.asOf))

	for _, id := range order {
		e.applyBasic(features[id], e.employees[id])
	}
	e.applyCareer(features, ds.Careers)
	e.applyEducation(features, ds.SchoolHistory, ds.Schools)
	e.applyDepartments(features, ds)
	e.applyJobs(features, ds)
	e.applyGrades(features, ds)
	e.applyProjects(features, ds)
	e.applyExperience(features)
	e.applyPayroll(features, ds)
	e.applySalaryBands(features)
	e.applyPerformance(features, ds)
	e.applyAttendance(features, ds)
	e.applyLeave(features, ds)
	e.applyAbsence(features, ds)
	e.applyOutlierPatches(features)

	table := Assemble(features, order)
	profiles := e.buildProfiles(ds, order)

	e.logger.InfoContext(ctx, "feature table ready",
		slog.Int("rows", len(table.Rows)),
		slog.Int("columns", len(table.Columns)),
		slog.String("schema_version", table.Schema.Version),
		slog.Duration("elapsed", time.Since(start)))
	return &Result{Table: table, Profiles: profiles}, nil
}
