package dataprocessing

import (
	"sort"

	"gripulse/pkg/contracts/domain"
)

// ComputeYearlyTotals sums an indicator's measurements per reporting year
// and attaches the year-over-year movement. The first reported year has no
// change columns.
func ComputeYearlyTotals(ms []domain.Measurement) []domain.YearlyTotal {
	byYear := make(map[int]float64)
	for _, m := range ms {
		if m.Value == nil {
			continue
		}
		byYear[m.Year] += *m.Value
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	totals := make([]domain.YearlyTotal, 0, len(years))
	for i, y := range years {
		t := domain.YearlyTotal{Year: y, Total: byYear[y]}
		if i > 0 {
			prev := byYear[years[i-1]]
			abs := t.Total - prev
			t.ChangeAbs = &abs
			if prev != 0 {
				pct := abs / prev * 100
				t.ChangePct = &pct
			}
		}
		totals = append(totals, t)
	}
	return totals
}

// MonthlySeries returns the measurements of one year sorted by month,
// dropping rows without a resolvable month.
func MonthlySeries(ms []domain.Measurement, year int) []domain.Measurement {
	var out []domain.Measurement
	for _, m := range ms {
		if m.Year == year && m.Month >= 1 && m.Month <= 12 {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// TotalForYear returns the yearly total entry for one year.
func TotalForYear(totals []domain.YearlyTotal, year int) (domain.YearlyTotal, bool) {
	for _, t := range totals {
		if t.Year == year {
			return t, true
		}
	}
	return domain.YearlyTotal{}, false
}
