package services

import (
	"context"
	"log/slog"

	"gripulse/internal/dataprocessing"
	apierrors "gripulse/internal/errors"
	"gripulse/pkg/contracts/domain"
)

// AnalyticsService computes KPI analytics over the loaded datasets:
// yearly totals, forecasts, anomaly detection, ESG scoring, coverage
// and readiness assessment.
type AnalyticsService struct {
	loader *dataprocessing.Loader
	logger *slog.Logger
}

// NewAnalyticsService creates an analytics service.
func NewAnalyticsService(loader *dataprocessing.Loader, logger *slog.Logger) *AnalyticsService {
	return &AnalyticsService{
		loader: loader,
		logger: logger.With(slog.String("service", "analytics")),
	}
}

// IndicatorAnalytics bundles an indicator's KPI view for the dashboard.
type IndicatorAnalytics struct {
	Indicator domain.Indicator     `json:"indicator"`
	Unit      string               `json:"unit"`
	Yearly    []domain.YearlyTotal `json:"yearly"`
	Forecast  *domain.Forecast     `json:"forecast,omitempty"`
	Narrative string               `json:"narrative,omitempty"`
}

// YearlyTotals returns the totals and YoY changes for one indicator.
func (as *AnalyticsService) YearlyTotals(ctx context.Context, key domain.IndicatorKey) ([]domain.YearlyTotal, error) {
	ms, err := as.loader.LoadIndicator(key)
	if err != nil {
		return nil, err
	}
	return dataprocessing.ComputeYearlyTotals(ms), nil
}

// IndicatorOverview returns the full KPI view of one indicator,
// narrated for its latest reporting year.
func (as *AnalyticsService) IndicatorOverview(ctx context.Context, key domain.IndicatorKey) (*IndicatorAnalytics, error) {
	ms, err := as.loader.LoadIndicator(key)
	if err != nil {
		return nil, err
	}

	unit := domain.Unit(ms)
	yearly := dataprocessing.ComputeYearlyTotals(ms)

	out := &IndicatorAnalytics{
		Indicator: domain.Indicators[key],
		Unit:      unit,
		Yearly:    yearly,
	}
	if fc, ok := dataprocessing.ForecastNextYear(yearly); ok {
		out.Forecast = &fc
	}
	if len(yearly) > 0 {
		latest := yearly[len(yearly)-1].Year
		out.Narrative = dataprocessing.BuildIndicatorNarrative(key, ms, latest, unit)
	}
	return out, nil
}

// Forecast predicts the next year's total for one indicator.
func (as *AnalyticsService) Forecast(ctx context.Context, key domain.IndicatorKey) (*domain.Forecast, error) {
	yearly, err := as.YearlyTotals(ctx, key)
	if err != nil {
		return nil, err
	}
	fc, ok := dataprocessing.ForecastNextYear(yearly)
	if !ok {
		return nil, ErrNoDataFound
	}
	return &fc, nil
}

// Anomalies flags outlier years of one company metric. A zero threshold
// uses the dashboard default.
func (as *AnalyticsService) Anomalies(ctx context.Context, workbook, category, metric string, threshold float64) ([]domain.Anomaly, error) {
	dataset, err := as.loader.LoadCompany(workbook)
	if err != nil {
		return nil, companyWorkbookError(err)
	}

	years, values, ok := dataprocessing.TrendSeries(dataset, category, metric)
	if !ok {
		return nil, apierrors.NotFoundError("metric")
	}
	if threshold <= 0 {
		threshold = dataprocessing.DashboardThreshold
	}

	anomalies := dataprocessing.DetectAnomalies(years, values, threshold)
	as.logger.DebugContext(ctx, "anomaly detection completed",
		slog.String("company", dataset.Company),
		slog.String("metric", metric),
		slog.Int("flagged", len(anomalies)))
	return anomalies, nil
}

// ESGScore computes the weighted category score for one company.
func (as *AnalyticsService) ESGScore(ctx context.Context, workbook string) (*domain.ESGScore, error) {
	dataset, err := as.loader.LoadCompany(workbook)
	if err != nil {
		return nil, companyWorkbookError(err)
	}
	score := dataprocessing.ComputeESGScore(dataset)
	return &score, nil
}

// Readiness assesses GRI reporting readiness for one company.
func (as *AnalyticsService) Readiness(ctx context.Context, workbook string) (*domain.ReadinessAssessment, error) {
	dataset, err := as.loader.LoadCompany(workbook)
	if err != nil {
		return nil, companyWorkbookError(err)
	}
	assessment := dataprocessing.AssessReadiness(dataset.Company, dataset)
	return &assessment, nil
}

// Comparison builds the year-over-year metric table for one company
// category.
func (as *AnalyticsService) Comparison(ctx context.Context, workbook, category string, firstYear, secondYear int) ([]domain.MetricComparison, error) {
	dataset, err := as.loader.LoadCompany(workbook)
	if err != nil {
		return nil, companyWorkbookError(err)
	}

	metrics := dataset.MetricsFor(category)
	if len(metrics) == 0 {
		return nil, apierrors.NotFoundError("category")
	}
	return dataprocessing.CompareYears(metrics, firstYear, secondYear), nil
}

// CompanyKPIs returns the latest values per metric of one company
// category.
func (as *AnalyticsService) CompanyKPIs(ctx context.Context, workbook, category string) (map[string]float64, error) {
	dataset, err := as.loader.LoadCompany(workbook)
	if err != nil {
		return nil, companyWorkbookError(err)
	}
	return dataprocessing.CompanyKPIs(dataset, category), nil
}
