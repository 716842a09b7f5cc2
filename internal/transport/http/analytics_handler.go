package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "gripulse/internal/errors"
	"gripulse/internal/middleware"
	"gripulse/internal/services"
	api "gripulse/pkg/contracts/api/v1"
	"gripulse/pkg/contracts/domain"
)

// AnalyticsHandler serves the KPI analytics endpoints.
type AnalyticsHandler struct {
	service      *services.AnalyticsService
	validator    *middleware.ValidationMiddleware
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewAnalyticsHandler creates an analytics handler.
func NewAnalyticsHandler(service *services.AnalyticsService, validator *middleware.ValidationMiddleware, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *AnalyticsHandler {
	return &AnalyticsHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "analytics_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the analytics routes.
func (h *AnalyticsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Route("/indicators/{indicator}", func(r chi.Router) {
		r.Use(h.IndicatorCtx)
		r.Get("/", h.GetIndicatorOverview)
		r.Get("/yearly", h.GetYearlyTotals)
		r.Get("/forecast", h.GetForecast)
	})

	r.Post("/anomalies", h.DetectAnomalies)
	r.Post("/comparison", h.CompareYears)
	r.Get("/esg", h.GetESGScore)
	r.Get("/readiness", h.GetReadiness)
	r.Get("/kpis", h.GetCompanyKPIs)

	return r
}

// IndicatorCtx validates the indicator URL parameter.
func (h *AnalyticsHandler) IndicatorCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		indicator := chi.URLParam(r, "indicator")
		if _, ok := domain.Indicators[domain.IndicatorKey(indicator)]; !ok {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("indicator",
				fmt.Sprintf("Unknown indicator: %s", indicator)))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetIndicatorOverview handles GET /api/analytics/indicators/{indicator}
func (h *AnalyticsHandler) GetIndicatorOverview(w http.ResponseWriter, r *http.Request) {
	key := domain.IndicatorKey(chi.URLParam(r, "indicator"))
	overview, err := h.service.IndicatorOverview(r.Context(), key)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, overview)
}

// GetYearlyTotals handles GET /api/analytics/indicators/{indicator}/yearly
func (h *AnalyticsHandler) GetYearlyTotals(w http.ResponseWriter, r *http.Request) {
	key := domain.IndicatorKey(chi.URLParam(r, "indicator"))
	totals, err := h.service.YearlyTotals(r.Context(), key)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{"yearly": totals})
}

// GetForecast handles GET /api/analytics/indicators/{indicator}/forecast
func (h *AnalyticsHandler) GetForecast(w http.ResponseWriter, r *http.Request) {
	key := domain.IndicatorKey(chi.URLParam(r, "indicator"))
	fc, err := h.service.Forecast(r.Context(), key)
	if err != nil {
		if err == services.ErrNoDataFound {
			h.errorHandler.HandleError(w, r, apierrors.NotFoundError("forecast"))
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, fc)
}

// DetectAnomalies handles POST /api/analytics/anomalies
func (h *AnalyticsHandler) DetectAnomalies(w http.ResponseWriter, r *http.Request) {
	var req api.AnomalyRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	anomalies, err := h.service.Anomalies(r.Context(), req.Company, req.Category, req.Metric, req.Threshold)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"count":     len(anomalies),
		"anomalies": anomalies,
	})
}

// CompareYears handles POST /api/analytics/comparison
func (h *AnalyticsHandler) CompareYears(w http.ResponseWriter, r *http.Request) {
	var req api.ComparisonRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	rows, err := h.service.Comparison(r.Context(), req.Company, req.Category, req.FirstYear, req.SecondYear)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{"comparison": rows})
}

// GetESGScore handles GET /api/analytics/esg?company=...
func (h *AnalyticsHandler) GetESGScore(w http.ResponseWriter, r *http.Request) {
	company, ok := h.companyParam(w, r)
	if !ok {
		return
	}
	score, err := h.service.ESGScore(r.Context(), company)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, score)
}

// GetReadiness handles GET /api/analytics/readiness?company=...
func (h *AnalyticsHandler) GetReadiness(w http.ResponseWriter, r *http.Request) {
	company, ok := h.companyParam(w, r)
	if !ok {
		return
	}
	assessment, err := h.service.Readiness(r.Context(), company)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, assessment)
}

// GetCompanyKPIs handles GET /api/analytics/kpis?company=...&category=...
func (h *AnalyticsHandler) GetCompanyKPIs(w http.ResponseWriter, r *http.Request) {
	company, ok := h.companyParam(w, r)
	if !ok {
		return
	}
	category := r.URL.Query().Get("category")
	if category == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("category", "category query parameter is required"))
		return
	}

	kpis, err := h.service.CompanyKPIs(r.Context(), company, category)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{"kpis": kpis})
}

func (h *AnalyticsHandler) companyParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	company := r.URL.Query().Get("company")
	if company == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("company", "company query parameter is required"))
		return "", false
	}
	return company, true
}

func (h *AnalyticsHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrInvalidRequest)
		return false
	}
	if err := h.validator.ValidateStruct(v); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return false
	}
	return true
}
