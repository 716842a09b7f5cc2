package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "gripulse/internal/errors"
	"gripulse/internal/middleware"
	"gripulse/internal/services"
	api "gripulse/pkg/contracts/api/v1"
)

// ReportHandler serves PDF generation, listing, download and email
// delivery.
type ReportHandler struct {
	service      *services.ReportService
	validator    *middleware.ValidationMiddleware
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewReportHandler creates a report handler.
func NewReportHandler(service *services.ReportService, validator *middleware.ValidationMiddleware, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ReportHandler {
	return &ReportHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "report_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the report routes.
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.ListReports)
	r.Get("/years", h.GetYears)
	r.Post("/gri", h.GenerateGRI)
	r.Post("/company", h.GenerateCompany)
	r.Post("/anomaly", h.GenerateAnomaly)
	r.Post("/email", h.EmailReport)
	r.Get("/download/{filename}", h.DownloadReport)

	return r
}

// ListReports handles GET /api/reports
func (h *ReportHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.service.List(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"count":   len(reports),
		"reports": reports,
	})
}

// GetYears handles GET /api/reports/years
func (h *ReportHandler) GetYears(w http.ResponseWriter, r *http.Request) {
	years, err := h.service.AvailableYears(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{"years": years})
}

// GenerateGRI handles POST /api/reports/gri
func (h *ReportHandler) GenerateGRI(w http.ResponseWriter, r *http.Request) {
	var req api.GenerateReportRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	h.logger.InfoContext(r.Context(), "generating GRI report", slog.Int("year", req.Year))
	report, err := h.service.GenerateGRI(r.Context(), req.Year)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, report)
}

// GenerateCompany handles POST /api/reports/company
func (h *ReportHandler) GenerateCompany(w http.ResponseWriter, r *http.Request) {
	var req api.CompanyReportRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	report, err := h.service.GenerateCompany(r.Context(), req.Company)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, report)
}

// GenerateAnomaly handles POST /api/reports/anomaly
func (h *ReportHandler) GenerateAnomaly(w http.ResponseWriter, r *http.Request) {
	var req api.AnomalyRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	report, err := h.service.GenerateAnomaly(r.Context(), req.Company, req.Category, req.Metric)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, report)
}

// EmailReport handles POST /api/reports/email
func (h *ReportHandler) EmailReport(w http.ResponseWriter, r *http.Request) {
	var req api.EmailReportRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.service.Email(r.Context(), req); err != nil {
		if err == services.ErrReportNotFound {
			h.errorHandler.HandleError(w, r, apierrors.NotFoundError("report"))
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "sent",
		"to":     req.To,
		"file":   req.Filename,
	})
}

// DownloadReport handles GET /api/reports/download/{filename}
func (h *ReportHandler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	data, err := h.service.Read(r.Context(), filename)
	if err != nil {
		if err == services.ErrReportNotFound {
			h.errorHandler.HandleError(w, r, apierrors.NotFoundError("report"))
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

func (h *ReportHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
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
