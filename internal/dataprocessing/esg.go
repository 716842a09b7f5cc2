package dataprocessing

import (
	"math"
	"strings"

	"gripulse/pkg/contracts/domain"
)

// ComputeESGScore applies the fixed-weight category scoring over the
// latest reported year of each category. Each category scores
// max(0, 100 - avg/max*100); categories without data are skipped and
// contribute nothing to the weighted overall.
func ComputeESGScore(dataset *domain.CompanyDataset) domain.ESGScore {
	score := domain.ESGScore{Categories: make(map[string]float64)}

	for _, key := range domain.IndicatorOrder {
		ind := domain.Indicators[key]
		metrics := metricsForCategory(dataset, string(ind.Key))
		if len(metrics) == 0 {
			continue
		}

		latest := latestCommonYear(metrics)
		if latest == 0 {
			continue
		}

		var values []float64
		for _, m := range metrics {
			if v, ok := m.Values[latest]; ok {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			continue
		}

		maxVal := values[0]
		var sum float64
		for _, v := range values {
			if v > maxVal {
				maxVal = v
			}
			sum += v
		}
		if maxVal == 0 {
			continue
		}
		avg := sum / float64(len(values))

		categoryScore := math.Max(0, 100-avg/maxVal*100)
		score.Categories[categoryLabel(ind)] = round2(categoryScore)
		score.Overall += categoryScore * ind.ESGWeight
	}

	score.Overall = round2(score.Overall)
	return score
}

// metricsForCategory matches workbook sheet categories to a registry
// indicator by case-insensitive containment, so "Energy",
// "Energy Consumption" and "energy" all land on the same entry. The
// emissions key is shortened so "Emissions" sheets match the singular
// stem too.
func metricsForCategory(dataset *domain.CompanyDataset, key string) []domain.CompanyMetric {
	stem := strings.TrimSuffix(key, "s")
	var out []domain.CompanyMetric
	for _, m := range dataset.Metrics {
		if strings.Contains(strings.ToLower(m.Category), stem) {
			out = append(out, m)
		}
	}
	return out
}

// latestCommonYear returns the most recent year any of the metrics
// reports.
func latestCommonYear(metrics []domain.CompanyMetric) int {
	latest := 0
	for _, m := range metrics {
		for y := range m.Values {
			if y > latest {
				latest = y
			}
		}
	}
	return latest
}

// categoryLabel is the display name used as the score map key, e.g.
// "Energy", "Emissions".
func categoryLabel(ind domain.Indicator) string {
	key := string(ind.Key)
	return strings.ToUpper(key[:1]) + key[1:]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
