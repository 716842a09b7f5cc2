package dataprocessing

import (
	"gonum.org/v1/gonum/stat"

	"gripulse/pkg/contracts/domain"
)

// ForecastNextYear fits a least-squares line through the yearly totals and
// extrapolates one year ahead. With fewer than two observed years the last
// value is carried forward instead of fitting.
func ForecastNextYear(totals []domain.YearlyTotal) (domain.Forecast, bool) {
	if len(totals) == 0 {
		return domain.Forecast{}, false
	}

	last := totals[len(totals)-1]
	if len(totals) < 2 {
		return domain.Forecast{
			Year:           last.Year + 1,
			Value:          last.Total,
			CarriedForward: true,
		}, true
	}

	xs := make([]float64, len(totals))
	ys := make([]float64, len(totals))
	for i, t := range totals {
		xs[i] = float64(t.Year)
		ys[i] = t.Total
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	next := last.Year + 1

	return domain.Forecast{
		Year:      next,
		Value:     intercept + slope*float64(next),
		Slope:     slope,
		Intercept: intercept,
	}, true
}

// ForecastMetric extrapolates one company metric a year ahead. Metrics
// need at least three reported years before a prediction is attempted.
func ForecastMetric(metric domain.CompanyMetric) (domain.Forecast, bool) {
	years := metric.Years()
	if len(years) < 3 {
		return domain.Forecast{}, false
	}

	xs := make([]float64, len(years))
	ys := make([]float64, len(years))
	for i, y := range years {
		xs[i] = float64(y)
		ys[i] = metric.Values[y]
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	next := years[len(years)-1] + 1

	return domain.Forecast{
		Year:      next,
		Value:     intercept + slope*float64(next),
		Slope:     slope,
		Intercept: intercept,
	}, true
}
