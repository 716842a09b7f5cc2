package dataprocessing

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"gripulse/pkg/contracts/domain"
)

// DescribeSeries computes the descriptive statistics the data explorer
// shows for one numeric column. The standard deviation is the sample
// estimate.
func DescribeSeries(column string, values []float64) domain.SeriesStats {
	s := domain.SeriesStats{Column: column, Count: len(values)}
	if len(values) == 0 {
		return s
	}

	s.Mean = stat.Mean(values, nil)
	if len(values) > 1 {
		s.Std = stat.StdDev(values, nil)
	}

	s.Min = values[0]
	s.Max = values[0]
	for _, v := range values {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	return s
}

// CompareYears builds the year-over-year comparison table for a company
// category: one row per metric reporting both years.
func CompareYears(metrics []domain.CompanyMetric, firstYear, secondYear int) []domain.MetricComparison {
	var out []domain.MetricComparison
	for _, m := range metrics {
		first, okFirst := m.Values[firstYear]
		second, okSecond := m.Values[secondYear]
		if !okFirst || !okSecond {
			continue
		}
		out = append(out, domain.MetricComparison{
			Metric:      m.Name,
			FirstYear:   firstYear,
			SecondYear:  secondYear,
			FirstValue:  first,
			SecondValue: second,
			Difference:  second - first,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Metric < out[j].Metric })
	return out
}

// CompanyKPIs extracts the latest-year value per metric of one category,
// rounded to two decimals.
func CompanyKPIs(dataset *domain.CompanyDataset, category string) map[string]float64 {
	kpis := make(map[string]float64)
	for _, m := range dataset.MetricsFor(category) {
		if _, v, ok := m.LatestValue(); ok {
			kpis[m.Name] = round2(v)
		}
	}
	return kpis
}

// TrendSeries returns one metric's values over its reported years,
// ascending.
func TrendSeries(dataset *domain.CompanyDataset, category, metricName string) ([]int, []float64, bool) {
	for _, m := range dataset.MetricsFor(category) {
		if m.Name != metricName {
			continue
		}
		years := m.Years()
		values := make([]float64, len(years))
		for i, y := range years {
			values[i] = m.Values[y]
		}
		return years, values, true
	}
	return nil, nil, false
}
