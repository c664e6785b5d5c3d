package http

import (
	"context"

	"hrpulse/internal/attribution"
	"hrpulse/internal/pipeline"
	"hrpulse/internal/services"
)

// AttritionService is the service surface the handler depends on,
// narrowed for testability.
type AttritionService interface {
	GetFeatureSummary(ctx context.Context) (*services.FeatureSummary, error)
	GetProfiles(ctx context.Context) ([]pipeline.EmployeeProfile, error)
	GetRiskRanking(ctx context.Context) ([]attribution.RiskEntry, error)
	GetGlobalAttribution(ctx context.Context) (*attribution.GlobalAttribution, error)
	GetTopFeatures(ctx context.Context, n int) ([]attribution.FeatureWeight, error)
	GetEmployeeAttribution(ctx context.Context, employeeID string) (*attribution.EmployeeAttribution, error)
	Retrain(ctx context.Context)
}
