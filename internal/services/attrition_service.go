package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"hrpulse/internal/attribution"
	"hrpulse/internal/hrdata"
	"hrpulse/internal/model"
	"hrpulse/internal/pipeline"
)

// AttritionService owns the full load → features → train → explain
// chain and memoizes every expensive artifact. The first caller after
// startup (or after a retrain) pays for the computation; concurrent
// callers are deduplicated through singleflight and everyone else is
// served from the cache.
type AttritionService struct {
	loader       *hrdata.Loader
	engineParams pipeline.Params
	trainParams  model.Params
	explainerCfg attribution.Config
	logger       *slog.Logger

	mu         sync.RWMutex
	generation uint64
	state      *computedState
	group      singleflight.Group
}

// computedState holds everything derived from one pipeline run. It is
// immutable once published.
type computedState struct {
	result    *pipeline.Result
	model     *model.GBT
	explainer *attribution.Explainer
	global    *attribution.GlobalAttribution
	ranking   []attribution.RiskEntry
}

// NewAttritionService creates the service. Nothing is computed until
// the first read.
func NewAttritionService(loader *hrdata.Loader, engineParams pipeline.Params, trainParams model.Params, explainerCfg attribution.Config, logger *slog.Logger) *AttritionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AttritionService{
		loader:       loader,
		engineParams: engineParams,
		trainParams:  trainParams,
		explainerCfg: explainerCfg,
		logger:       logger,
	}
}

// ensure returns the current computed state, running the pipeline if
// no generation has been computed yet. The singleflight key carries
// the generation counter so a retrain can never be satisfied by an
// in-flight computation of the previous generation.
func (s *AttritionService) ensure(ctx context.Context) (*computedState, error) {
	s.mu.RLock()
	state := s.state
	gen := s.generation
	s.mu.RUnlock()
	if state != nil {
		return state, nil
	}

	v, err, _ := s.group.Do(fmt.Sprintf("compute-%d", gen), func() (interface{}, error) {
		s.mu.RLock()
		cached := s.state
		s.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}
		computed, err := s.compute(ctx)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		if s.generation == gen {
			s.state = computed
		}
		s.mu.Unlock()
		return computed, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*computedState), nil
}

// compute runs the full chain once.
func (s *AttritionService) compute(ctx context.Context) (*computedState, error) {
	start := time.Now()
	s.logger.InfoContext(ctx, "computing attrition artifacts")

	ds, err := s.loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading dataset: %w", err)
	}
	engine := pipeline.NewEngine(s.engineParams, s.logger)
	result, err := engine.Build(ctx, ds)
	if err != nil {
		return nil, fmt.Errorf("building features: %w", err)
	}
	gbt, err := model.Train(ctx, result.Table, s.trainParams, s.logger)
	if err != nil {
		return nil, fmt.Errorf("training model: %w", err)
	}
	explainer, err := attribution.NewExplainer(ctx, gbt, result.Table, s.explainerCfg, s.logger)
	if err != nil {
		return nil, fmt.Errorf("building explainer: %w", err)
	}
	global := explainer.ExplainGlobal(ctx, result.Table,
		s.explainerCfg.GlobalSampleSize, s.explainerCfg.Seed)
	ranking := explainer.RankActive(result.Table)

	s.logger.InfoContext(ctx, "attrition artifacts ready",
		slog.Int("employees", len(result.Table.Rows)),
		slog.Int("active_ranked", len(ranking)),
		slog.Duration("elapsed", time.Since(start)))
	return &computedState{
		result:    result,
		model:     gbt,
		explainer: explainer,
		global:    global,
		ranking:   ranking,
	}, nil
}

// FeatureSummary describes the assembled table without shipping its
// rows.
type FeatureSummary struct {
	Employees     int                     `json:"employees"`
	Features      int                     `json:"features"`
	Columns       []string                `json:"columns"`
	Schema        pipeline.EncodingSchema `json:"schema"`
	ReferenceDate time.Time               `json:"reference_date"`
}

// GetFeatureSummary returns the dimensions and encoding schema of the
// current feature table.
func (s *AttritionService) GetFeatureSummary(ctx context.Context) (*FeatureSummary, error) {
	state, err := s.ensure(ctx)
	if err != nil {
		return nil, err
	}
	asOf := s.engineParams.AsOf
	if asOf.IsZero() {
		asOf = state.model.TrainedAt
	}
	return &FeatureSummary{
		Employees:     len(state.result.Table.Rows),
		Features:      state.result.Table.NumFeatures(),
		Columns:       state.result.Table.Columns,
		Schema:        state.result.Table.Schema,
		ReferenceDate: asOf,
	}, nil
}

// GetProfiles returns the human-readable employee table.
func (s *AttritionService) GetProfiles(ctx context.Context) ([]pipeline.EmployeeProfile, error) {
	state, err := s.ensure(ctx)
	if err != nil {
		return nil, err
	}
	return state.result.Profiles, nil
}

// GetRiskRanking returns active employees sorted by descending risk.
func (s *AttritionService) GetRiskRanking(ctx context.Context) ([]attribution.RiskEntry, error) {
	state, err := s.ensure(ctx)
	if err != nil {
		return nil, err
	}
	if len(state.ranking) == 0 {
		return nil, ErrNoActiveEmployees
	}
	return state.ranking, nil
}

// GetGlobalAttribution returns the dataset-level feature weights.
func (s *AttritionService) GetGlobalAttribution(ctx context.Context) (*attribution.GlobalAttribution, error) {
	state, err := s.ensure(ctx)
	if err != nil {
		return nil, err
	}
	return state.global, nil
}

// GetTopFeatures returns the n globally heaviest features.
func (s *AttritionService) GetTopFeatures(ctx context.Context, n int) ([]attribution.FeatureWeight, error) {
	state, err := s.ensure(ctx)
	if err != nil {
		return nil, err
	}
	return state.global.TopFeatures(n), nil
}

// GetEmployeeAttribution explains one employee's risk score.
func (s *AttritionService) GetEmployeeAttribution(ctx context.Context, employeeID string) (*attribution.EmployeeAttribution, error) {
	state, err := s.ensure(ctx)
	if err != nil {
		return nil, err
	}
	att, ok := state.explainer.ExplainEmployee(state.result.Table, employeeID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEmployeeNotFound, employeeID)
	}
	return att, nil
}

// Retrain drops every cached artifact. The next read recomputes from
// the data directory, picking up any changed input files.
func (s *AttritionService) Retrain(ctx context.Context) {
	s.mu.Lock()
	s.generation++
	s.state = nil
	gen := s.generation
	s.mu.Unlock()
	s.logger.InfoContext(ctx, "attrition cache invalidated",
		slog.Uint64("generation", gen))
}
