package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "hrpulse/internal/errors"
	customMiddleware "hrpulse/internal/middleware"
	"hrpulse/internal/services"
)

// defaultTopFeatures is the top-N size when the query omits n.
const defaultTopFeatures = 10

// AttritionHandler serves the feature, risk and attribution endpoints.
type AttritionHandler struct {
	service      AttritionService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewAttritionHandler creates a new attrition handler
func NewAttritionHandler(service AttritionService, logger *slog.Logger) *AttritionHandler {
	return &AttritionHandler{
		service:      service,
		logger:       logger,
		errorHandler: apierrors.NewErrorHandler(logger, false),
	}
}

// RegisterRoutes registers the attrition routes
func (h *AttritionHandler) RegisterRoutes(r chi.Router) {
	r.Get("/features", h.GetFeatures)
	r.Get("/profiles", h.GetProfiles)
	r.Get("/risk/ranking", h.GetRiskRanking)
	r.Route("/attribution", func(r chi.Router) {
		r.Get("/global", h.GetGlobalAttribution)
		r.Get("/top", h.GetTopFeatures)
		r.Get("/employee/{id}", h.GetEmployeeAttribution)
	})
	r.With(customMiddleware.TraceMiddleware("model.retrain")).Post("/model/retrain", h.Retrain)
}

// GetFeatures returns the feature table dimensions and encoding schema.
func (h *AttritionHandler) GetFeatures(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	summary, err := h.service.GetFeatureSummary(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to get feature summary",
			slog.String("error", err.Error()))
		customMiddleware.RecordSystemError(ctx, "features", "attrition_handler")
		h.errorHandler.HandleError(w, r, apierrors.New(
			http.StatusInternalServerError,
			"FEATURES_ERROR",
			"Failed to compute feature table",
		))
		return
	}
	render.JSON(w, r, summary)
}

// GetProfiles returns the human-readable employee table.
func (h *AttritionHandler) GetProfiles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profiles, err := h.service.GetProfiles(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to get employee profiles",
			slog.String("error", err.Error()))
		customMiddleware.RecordSystemError(ctx, "profiles", "attrition_handler")
		h.errorHandler.HandleError(w, r, apierrors.New(
			http.StatusInternalServerError,
			"PROFILES_ERROR",
			"Failed to build employee profiles",
		))
		return
	}
	render.JSON(w, r, profiles)
}

// GetRiskRanking returns active employees ordered by attrition risk.
func (h *AttritionHandler) GetRiskRanking(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	h.logger.InfoContext(ctx, "Getting risk ranking")
	ranking, err := h.service.GetRiskRanking(ctx)
	if err != nil {
		if errors.Is(err, services.ErrNoActiveEmployees) {
			h.errorHandler.HandleError(w, r, apierrors.New(
				http.StatusNotFound,
				"NO_ACTIVE_EMPLOYEES",
				"No active employees available to rank",
			))
			return
		}
		h.logger.ErrorContext(ctx, "Failed to get risk ranking",
			slog.String("error", err.Error()))
		customMiddleware.RecordSystemError(ctx, "ranking", "attrition_handler")
		h.errorHandler.HandleError(w, r, apierrors.New(
			http.StatusInternalServerError,
			"RANKING_ERROR",
			"Failed to compute risk ranking",
		))
		return
	}
	render.JSON(w, r, ranking)
}

// GetGlobalAttribution returns the dataset-level feature weights.
func (h *AttritionHandler) GetGlobalAttribution(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	global, err := h.service.GetGlobalAttribution(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to get global attribution",
			slog.String("error", err.Error()))
		customMiddleware.RecordSystemError(ctx, "attribution", "attrition_handler")
		h.errorHandler.HandleError(w, r, apierrors.New(
			http.StatusInternalServerError,
			"ATTRIBUTION_ERROR",
			"Failed to compute global attribution",
		))
		return
	}
	render.JSON(w, r, global)
}

// GetTopFeatures returns the n globally heaviest features. The n query
// parameter defaults to 10 and must be a positive integer.
func (h *AttritionHandler) GetTopFeatures(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	n := defaultTopFeatures
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.logger.WarnContext(ctx, "Invalid top feature count requested",
				slog.String("n", raw))
			h.errorHandler.HandleError(w, r, apierrors.New(
				http.StatusBadRequest,
				"INVALID_COUNT",
				"Parameter n must be a positive integer",
			))
			return
		}
		n = parsed
	}

	features, err := h.service.GetTopFeatures(ctx, n)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to get top features",
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, apierrors.New(
			http.StatusInternalServerError,
			"ATTRIBUTION_ERROR",
			"Failed to compute top features",
		))
		return
	}
	render.JSON(w, r, features)
}

// GetEmployeeAttribution explains one employee's risk score.
func (h *AttritionHandler) GetEmployeeAttribution(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := chi.URLParam(r, "id")
	if id == "" {
		h.errorHandler.HandleError(w, r, apierrors.New(
			http.StatusBadRequest,
			"MISSING_EMPLOYEE_ID",
			"Employee id is required",
		))
		return
	}

	att, err := h.service.GetEmployeeAttribution(ctx, id)
	if err != nil {
		if errors.Is(err, services.ErrEmployeeNotFound) {
			h.logger.WarnContext(ctx, "Attribution requested for unknown employee",
				slog.String("employee_id", id))
			h.errorHandler.HandleError(w, r, apierrors.New(
				http.StatusNotFound,
				"EMPLOYEE_NOT_FOUND",
				"No employee with the given id",
			))
			return
		}
		h.logger.ErrorContext(ctx, "Failed to get employee attribution",
			slog.String("employee_id", id),
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, apierrors.New(
			http.StatusInternalServerError,
			"ATTRIBUTION_ERROR",
			"Failed to compute employee attribution",
		))
		return
	}
	render.JSON(w, r, att)
}

// Retrain drops the cached model artifacts so the next read recomputes
// them from the data directory.
func (h *AttritionHandler) Retrain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	h.logger.InfoContext(ctx, "Retrain requested")
	h.service.Retrain(ctx)
	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, map[string]string{"status": "retraining scheduled"})
}
