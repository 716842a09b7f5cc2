package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "gripulse/internal/errors"
	"gripulse/internal/services"
	"gripulse/pkg/contracts/domain"
)

// DataHandler serves the data explorer endpoints with RFC 7807 errors.
type DataHandler struct {
	service      *services.DataService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDataHandler creates a data handler.
func NewDataHandler(service *services.DataService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DataHandler {
	return &DataHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "data_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the data routes.
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/files", h.GetFiles)
	r.Get("/measurements", h.GetMeasurements)
	r.Get("/years", h.GetYears)
	r.Get("/categories", h.GetCategories)
	r.Get("/stats", h.GetStats)
	r.Get("/download", h.DownloadCSV)

	r.Get("/companies", h.GetCompanies)
	r.Get("/companies/{workbook}", h.GetCompanyDataset)

	return r
}

// GetFiles handles GET /api/data/files
func (h *DataHandler) GetFiles(w http.ResponseWriter, r *http.Request) {
	listing, err := h.service.ListFiles(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, listing)
}

// GetMeasurements handles GET /api/data/measurements
func (h *DataHandler) GetMeasurements(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	ms, err := h.service.GetMeasurements(r.Context(), filter)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"count":        len(ms),
		"measurements": ms,
	})
}

// GetYears handles GET /api/data/years
func (h *DataHandler) GetYears(w http.ResponseWriter, r *http.Request) {
	years, err := h.service.GetYears(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{"years": years})
}

// GetCategories handles GET /api/data/categories
func (h *DataHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.GetCategories(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{"categories": categories})
}

// GetStats handles GET /api/data/stats
func (h *DataHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	stats, err := h.service.Describe(r.Context(), filter)
	if err != nil {
		if err == services.ErrNoDataFound {
			h.errorHandler.HandleError(w, r, apierrors.NotFoundError("data"))
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, stats)
}

// DownloadCSV handles GET /api/data/download
func (h *DataHandler) DownloadCSV(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	data, name, err := h.service.DownloadCSV(r.Context(), filter)
	if err != nil {
		if err == services.ErrNoDataFound {
			h.errorHandler.HandleError(w, r, apierrors.NotFoundError("data"))
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

// GetCompanies handles GET /api/data/companies
func (h *DataHandler) GetCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.service.ListCompanies(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{"companies": companies})
}

// GetCompanyDataset handles GET /api/data/companies/{workbook}
func (h *DataHandler) GetCompanyDataset(w http.ResponseWriter, r *http.Request) {
	workbook := chi.URLParam(r, "workbook")
	dataset, err := h.service.GetCompanyDataset(r.Context(), workbook)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, dataset)
}

// filterFromQuery parses the shared measurement filter query params.
func filterFromQuery(r *http.Request) (services.MeasurementFilter, error) {
	var filter services.MeasurementFilter
	q := r.URL.Query()

	if indicator := q.Get("indicator"); indicator != "" {
		key := domain.IndicatorKey(indicator)
		if _, ok := domain.Indicators[key]; !ok {
			return filter, apierrors.ErrValidation("indicator", fmt.Sprintf("Unknown indicator: %s", indicator))
		}
		filter.Indicator = key
	}
	if year := q.Get("year"); year != "" {
		v, err := strconv.Atoi(year)
		if err != nil {
			return filter, apierrors.ErrValidation("year", "Year must be an integer")
		}
		filter.Year = v
	}
	if min := q.Get("min"); min != "" {
		v, err := strconv.ParseFloat(min, 64)
		if err != nil {
			return filter, apierrors.ErrValidation("min", "min must be numeric")
		}
		filter.MinValue = &v
	}
	if max := q.Get("max"); max != "" {
		v, err := strconv.ParseFloat(max, 64)
		if err != nil {
			return filter, apierrors.ErrValidation("max", "max must be numeric")
		}
		filter.MaxValue = &v
	}
	return filter, nil
}
