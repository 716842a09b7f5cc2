package domain

// YearlyTotal aggregates one indicator for one reporting year with its
// year-over-year movement. ChangeAbs and ChangePct are nil for the first
// reported year.
type YearlyTotal struct {
	Year      int      `json:"year"`
	Total     float64  `json:"total"`
	ChangeAbs *float64 `json:"change_abs"`
	ChangePct *float64 `json:"change_pct"`
}

// Forecast is a one-year linear extrapolation of an indicator's yearly
// totals.
type Forecast struct {
	Year      int     `json:"year"`
	Value     float64 `json:"value"`
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	// CarriedForward is set when fewer than two points were available and
	// the last observed value was reused instead of a fitted line.
	CarriedForward bool `json:"carried_forward"`
}

// AnomalySeverity classifies how far a value sits from the series mean.
type AnomalySeverity string

const (
	SeverityNormal  AnomalySeverity = "normal"
	SeverityWarning AnomalySeverity = "warning"
	SeverityHigh    AnomalySeverity = "high_anomaly"
	SeverityLow     AnomalySeverity = "low_anomaly"
)

// Anomaly flags one value of a series as statistically unusual.
type Anomaly struct {
	Year        int             `json:"year"`
	Value       float64         `json:"value"`
	ZScore      float64         `json:"z_score"`
	Deviation   float64         `json:"deviation"`
	Severity    AnomalySeverity `json:"severity"`
	Explanation string          `json:"explanation"`
}

// ESGScore is the fixed-weight category scoring over latest-year values.
type ESGScore struct {
	Overall    float64            `json:"overall"`
	Categories map[string]float64 `json:"categories"`
}

// CoverageStatus describes how completely an indicator is reported.
type CoverageStatus string

const (
	StatusReported    CoverageStatus = "Reported"
	StatusPartial     CoverageStatus = "Partial"
	StatusNotReported CoverageStatus = "Not Reported"
)

// IndicatorCoverage pairs an indicator with its reporting completeness.
type IndicatorCoverage struct {
	Indicator string         `json:"indicator"`
	Status    CoverageStatus `json:"status"`
	Coverage  int            `json:"coverage"` // percent of periods reported
}

// ReadinessAssessment summarizes GRI reporting maturity for a company.
type ReadinessAssessment struct {
	Company    string              `json:"company"`
	Score      int                 `json:"score"` // percent
	Indicators []IndicatorCoverage `json:"indicators"`
	Summary    []string            `json:"summary"`
	Insights   []string            `json:"insights"`
}

// MetricComparison is one row of a year-over-year comparison table.
type MetricComparison struct {
	Metric     string  `json:"metric"`
	FirstYear  int     `json:"first_year"`
	SecondYear int     `json:"second_year"`
	FirstValue float64 `json:"first_value"`
	SecondValue float64 `json:"second_value"`
	Difference float64 `json:"difference"`
}

// SeriesStats holds descriptive statistics for one numeric series, as
// served by the data explorer.
type SeriesStats struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}
