package dataprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"gripulse/pkg/contracts/domain"
)

// Z-score boundaries. Batch cleaning flags warnings from 1.5; the
// interactive anomaly view uses a single 1.8 cut.
const (
	AnomalyThreshold   = 2.0
	WarningThreshold   = 1.5
	DashboardThreshold = 1.8
)

// ClassifyZScore maps a z-score to a severity using the batch thresholds.
func ClassifyZScore(z float64) domain.AnomalySeverity {
	switch {
	case z > AnomalyThreshold:
		return domain.SeverityHigh
	case z < -AnomalyThreshold:
		return domain.SeverityLow
	case math.Abs(z) > WarningThreshold:
		return domain.SeverityWarning
	default:
		return domain.SeverityNormal
	}
}

// ZScores standardizes a series against its own mean and population
// standard deviation. Missing values are filled with the mean first, which
// pins their score to zero. A constant series scores all zeros.
func ZScores(values []*float64) []float64 {
	var sum float64
	var n int
	for _, v := range values {
		if v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return make([]float64, len(values))
	}
	mean := sum / float64(n)

	filled := make([]float64, len(values))
	for i, v := range values {
		if v != nil {
			filled[i] = *v
		} else {
			filled[i] = mean
		}
	}

	var variance float64
	for _, v := range filled {
		variance += (v - mean) * (v - mean)
	}
	std := math.Sqrt(variance / float64(len(filled)))

	scores := make([]float64, len(filled))
	if std == 0 {
		return scores
	}
	for i, v := range filled {
		scores[i] = stat.StdScore(v, mean, std)
	}
	return scores
}

// DetectAnomalies scores one value per year and reports every year whose
// z-score crosses the threshold, with its deviation from the mean and a
// plain-text explanation.
func DetectAnomalies(years []int, values []float64, threshold float64) []domain.Anomaly {
	if len(years) != len(values) || len(values) == 0 {
		return nil
	}

	mean := stat.Mean(values, nil)
	ptrs := make([]*float64, len(values))
	for i := range values {
		ptrs[i] = &values[i]
	}
	scores := ZScores(ptrs)

	var out []domain.Anomaly
	for i, z := range scores {
		if math.Abs(z) <= threshold {
			continue
		}

		direction := "above"
		severity := domain.SeverityHigh
		if z < 0 {
			direction = "below"
			severity = domain.SeverityLow
		}

		out = append(out, domain.Anomaly{
			Year:      years[i],
			Value:     values[i],
			ZScore:    z,
			Deviation: values[i] - mean,
			Severity:  severity,
			Explanation: fmt.Sprintf(
				"Value %.2f in %d sits %.2f standard deviations %s the series mean of %.2f.",
				values[i], years[i], math.Abs(z), direction, mean),
		})
	}
	return out
}
