package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gripulse/pkg/contracts/domain"
)

func fv(v float64) *float64 { return &v }

func measurements(key domain.IndicatorKey, unit string, rows ...[3]float64) []domain.Measurement {
	ms := make([]domain.Measurement, 0, len(rows))
	for _, r := range rows {
		ms = append(ms, domain.Measurement{
			Year:      int(r[0]),
			Month:     int(r[1]),
			Indicator: key,
			Value:     fv(r[2]),
			Unit:      unit,
		})
	}
	return ms
}

func TestComputeYearlyTotals(t *testing.T) {
	ms := measurements(domain.IndicatorEnergy, "kWh",
		[3]float64{2022, 1, 100}, [3]float64{2022, 2, 100},
		[3]float64{2023, 1, 150}, [3]float64{2023, 2, 150})

	totals := ComputeYearlyTotals(ms)
	require.Len(t, totals, 2)

	assert.Equal(t, 2022, totals[0].Year)
	assert.InDelta(t, 200.0, totals[0].Total, 1e-9)
	assert.Nil(t, totals[0].ChangeAbs)
	assert.Nil(t, totals[0].ChangePct)

	assert.Equal(t, 2023, totals[1].Year)
	assert.InDelta(t, 300.0, totals[1].Total, 1e-9)
	require.NotNil(t, totals[1].ChangeAbs)
	assert.InDelta(t, 100.0, *totals[1].ChangeAbs, 1e-9)
	require.NotNil(t, totals[1].ChangePct)
	assert.InDelta(t, 50.0, *totals[1].ChangePct, 1e-9)
}

func TestComputeYearlyTotalsSkipsMissingValues(t *testing.T) {
	ms := []domain.Measurement{
		{Year: 2023, Month: 1, Value: fv(100)},
		{Year: 2023, Month: 2, Value: nil},
	}

	totals := ComputeYearlyTotals(ms)
	require.Len(t, totals, 1)
	assert.InDelta(t, 100.0, totals[0].Total, 1e-9)
}

func TestMonthlySeriesSortsAndFilters(t *testing.T) {
	ms := []domain.Measurement{
		{Year: 2023, Month: 3, Value: fv(30)},
		{Year: 2023, Month: 1, Value: fv(10)},
		{Year: 2022, Month: 2, Value: fv(99)},
		{Year: 2023, Month: 0, Value: fv(5)},
	}

	out := MonthlySeries(ms, 2023)
	require.Len(t, out, 2)
	assert.Equal(t, 1, out[0].Month)
	assert.Equal(t, 3, out[1].Month)
}

func TestForecastNextYearLinear(t *testing.T) {
	totals := []domain.YearlyTotal{
		{Year: 2021, Total: 100},
		{Year: 2022, Total: 110},
		{Year: 2023, Total: 120},
	}

	fc, ok := ForecastNextYear(totals)
	require.True(t, ok)
	assert.Equal(t, 2024, fc.Year)
	assert.InDelta(t, 130.0, fc.Value, 1e-6)
	assert.InDelta(t, 10.0, fc.Slope, 1e-6)
	assert.False(t, fc.CarriedForward)
}

func TestForecastNextYearCarriesForwardSingleYear(t *testing.T) {
	fc, ok := ForecastNextYear([]domain.YearlyTotal{{Year: 2023, Total: 42}})
	require.True(t, ok)
	assert.Equal(t, 2024, fc.Year)
	assert.InDelta(t, 42.0, fc.Value, 1e-9)
	assert.True(t, fc.CarriedForward)
}

func TestForecastNextYearEmpty(t *testing.T) {
	_, ok := ForecastNextYear(nil)
	assert.False(t, ok)
}

func TestForecastMetricNeedsThreeYears(t *testing.T) {
	metric := domain.CompanyMetric{
		Name:   "Electricity Consumption",
		Values: map[int]float64{2022: 100, 2023: 110},
	}
	_, ok := ForecastMetric(metric)
	assert.False(t, ok)

	metric.Values[2021] = 90
	fc, ok := ForecastMetric(metric)
	require.True(t, ok)
	assert.Equal(t, 2024, fc.Year)
	assert.InDelta(t, 120.0, fc.Value, 1e-6)
}

func TestZScoresConstantSeries(t *testing.T) {
	scores := ZScores([]*float64{fv(5), fv(5), fv(5)})
	assert.Equal(t, []float64{0, 0, 0}, scores)
}

func TestZScoresMissingValuesPinToZero(t *testing.T) {
	scores := ZScores([]*float64{fv(10), nil, fv(20)})
	assert.InDelta(t, 0.0, scores[1], 1e-9)
	assert.Less(t, scores[0], 0.0)
	assert.Greater(t, scores[2], 0.0)
}

func TestClassifyZScore(t *testing.T) {
	assert.Equal(t, domain.SeverityHigh, ClassifyZScore(2.5))
	assert.Equal(t, domain.SeverityLow, ClassifyZScore(-2.5))
	assert.Equal(t, domain.SeverityWarning, ClassifyZScore(1.7))
	assert.Equal(t, domain.SeverityWarning, ClassifyZScore(-1.7))
	assert.Equal(t, domain.SeverityNormal, ClassifyZScore(0.4))
}

func TestDetectAnomalies(t *testing.T) {
	years := []int{2019, 2020, 2021, 2022, 2023}
	values := []float64{100, 102, 98, 101, 300}

	anomalies := DetectAnomalies(years, values, DashboardThreshold)
	require.Len(t, anomalies, 1)
	assert.Equal(t, 2023, anomalies[0].Year)
	assert.Equal(t, domain.SeverityHigh, anomalies[0].Severity)
	assert.Greater(t, anomalies[0].Deviation, 0.0)
	assert.Contains(t, anomalies[0].Explanation, "above")
}

func TestDetectAnomaliesMismatchedInput(t *testing.T) {
	assert.Nil(t, DetectAnomalies([]int{2023}, nil, DashboardThreshold))
	assert.Nil(t, DetectAnomalies(nil, nil, DashboardThreshold))
}

func companyDataset() *domain.CompanyDataset {
	return &domain.CompanyDataset{
		Company: "Acme",
		Metrics: []domain.CompanyMetric{
			{
				Category: "Energy", Name: "Electricity Consumption", Unit: "kWh",
				Values: map[int]float64{2021: 100, 2022: 110, 2023: 120},
			},
			{
				Category: "Energy", Name: "Fuel Use", Unit: "L",
				Values: map[int]float64{2022: 52, 2023: 300},
			},
			{
				Category: "Water", Name: "Water Withdrawal", Unit: "m3",
				Values: map[int]float64{2023: 40},
			},
		},
	}
}

func TestComputeESGScore(t *testing.T) {
	score := ComputeESGScore(companyDataset())

	// Energy latest year 2023: values 120 and 300, avg 210, max 300
	require.Contains(t, score.Categories, "Energy")
	assert.InDelta(t, 30.0, score.Categories["Energy"], 1e-9)

	// Water single metric scores 0: avg equals max
	require.Contains(t, score.Categories, "Water")
	assert.InDelta(t, 0.0, score.Categories["Water"], 1e-9)

	assert.NotContains(t, score.Categories, "Emissions")
	assert.NotContains(t, score.Categories, "Waste")

	// Only energy (weight 0.25) contributes
	assert.InDelta(t, 7.5, score.Overall, 1e-9)
}

func TestDescribeSeries(t *testing.T) {
	s := DescribeSeries("value", []float64{10, 20, 30})
	assert.Equal(t, "value", s.Column)
	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, 20.0, s.Mean, 1e-9)
	assert.InDelta(t, 10.0, s.Std, 1e-9)
	assert.InDelta(t, 10.0, s.Min, 1e-9)
	assert.InDelta(t, 30.0, s.Max, 1e-9)
}

func TestDescribeSeriesEmpty(t *testing.T) {
	s := DescribeSeries("value", nil)
	assert.Equal(t, 0, s.Count)
	assert.Zero(t, s.Mean)
}

func TestCompareYears(t *testing.T) {
	rows := CompareYears(companyDataset().Metrics, 2022, 2023)
	require.Len(t, rows, 2)

	assert.Equal(t, "Electricity Consumption", rows[0].Metric)
	assert.InDelta(t, 10.0, rows[0].Difference, 1e-9)
	assert.Equal(t, "Fuel Use", rows[1].Metric)
	assert.InDelta(t, 248.0, rows[1].Difference, 1e-9)
}

func TestCompanyKPIs(t *testing.T) {
	kpis := CompanyKPIs(companyDataset(), "Energy")
	require.Len(t, kpis, 2)
	assert.InDelta(t, 120.0, kpis["Electricity Consumption"], 1e-9)
	assert.InDelta(t, 300.0, kpis["Fuel Use"], 1e-9)
}

func TestTrendSeries(t *testing.T) {
	years, values, ok := TrendSeries(companyDataset(), "Energy", "Fuel Use")
	require.True(t, ok)
	assert.Equal(t, []int{2022, 2023}, years)
	assert.Equal(t, []float64{52, 300}, values)

	_, _, ok = TrendSeries(companyDataset(), "Energy", "Unknown")
	assert.False(t, ok)
}

func TestIndicatorStatus(t *testing.T) {
	status, coverage := IndicatorStatus([]*float64{fv(1), fv(2), fv(3)})
	assert.Equal(t, domain.StatusReported, status)
	assert.Equal(t, 100, coverage)

	status, coverage = IndicatorStatus([]*float64{fv(1), nil, nil, fv(2)})
	assert.Equal(t, domain.StatusPartial, status)
	assert.Equal(t, 50, coverage)

	status, coverage = IndicatorStatus([]*float64{nil, nil})
	assert.Equal(t, domain.StatusNotReported, status)
	assert.Equal(t, 0, coverage)
}

func TestAssessReadiness(t *testing.T) {
	assessment := AssessReadiness("Acme", companyDataset())
	require.Len(t, assessment.Indicators, len(domain.IndicatorOrder))

	byName := make(map[string]domain.IndicatorCoverage)
	for _, ic := range assessment.Indicators {
		byName[ic.Indicator] = ic
	}

	assert.Equal(t, domain.StatusPartial, byName["Energy Consumption"].Status)
	assert.Equal(t, domain.StatusReported, byName["Water Usage"].Status)
	assert.Equal(t, domain.StatusNotReported, byName["GHG Emissions"].Status)

	assert.NotEmpty(t, assessment.Insights)
	assert.Contains(t, assessment.Insights[0], "Acme")
}

func TestBuildIndicatorNarrative(t *testing.T) {
	ms := measurements(domain.IndicatorEnergy, "kWh",
		[3]float64{2023, 1, 100}, [3]float64{2023, 2, 250}, [3]float64{2023, 3, 80})

	text := BuildIndicatorNarrative(domain.IndicatorEnergy, ms, 2023, "kWh")
	assert.Contains(t, text, "In 2023")
	assert.Contains(t, text, "energy consumption")
	assert.Contains(t, text, "430.00 kWh")
	assert.Contains(t, text, "month 2")
	assert.Contains(t, text, "month 3")
}

func TestBuildIndicatorNarrativeNoData(t *testing.T) {
	text := BuildIndicatorNarrative(domain.IndicatorEnergy, nil, 2023, "kWh")
	assert.Equal(t, "No available data for 2023.", text)
}

func TestBuildSummaryLine(t *testing.T) {
	totals := []domain.YearlyTotal{
		{Year: 2022, Total: 200},
		{Year: 2023, Total: 300, ChangeAbs: fv(100), ChangePct: fv(50)},
	}
	ind := domain.Indicators[domain.IndicatorEnergy]

	line := BuildSummaryLine(ind, totals, 2023, "kWh")
	assert.Contains(t, line, "Energy Consumption (GRI 302)")
	assert.Contains(t, line, "300.00 kWh")
	assert.Contains(t, line, "increased by 50.0%")

	line = BuildSummaryLine(ind, totals, 2022, "kWh")
	assert.Contains(t, line, "stable performance")

	line = BuildSummaryLine(ind, totals, 1999, "kWh")
	assert.Contains(t, line, "No data for 1999")
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "1,234,567.80", FormatNumber(1234567.8))
	assert.Equal(t, "0.00", FormatNumber(0))
	assert.Equal(t, "-12,000.50", FormatNumber(-12000.5))
	assert.Equal(t, "999.99", FormatNumber(999.99))
}
