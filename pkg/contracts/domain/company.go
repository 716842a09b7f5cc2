package domain

import "sort"

// CompanyMetric is one row of a company workbook sheet: a named metric
// with one value per reporting year. Missing years are absent from Values.
type CompanyMetric struct {
	Category string          `json:"category"`
	Name     string          `json:"name" validate:"required"`
	Unit     string          `json:"unit"`
	Values   map[int]float64 `json:"values"`
}

// Years returns the years the metric reports, ascending.
func (m CompanyMetric) Years() []int {
	years := make([]int, 0, len(m.Values))
	for y := range m.Values {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// LatestValue returns the value for the most recent reported year.
func (m CompanyMetric) LatestValue() (year int, value float64, ok bool) {
	years := m.Years()
	if len(years) == 0 {
		return 0, 0, false
	}
	year = years[len(years)-1]
	return year, m.Values[year], true
}

// CompanyDataset holds all metrics parsed from a single company workbook.
type CompanyDataset struct {
	Company string          `json:"company"`
	Source  string          `json:"source"`
	Metrics []CompanyMetric `json:"metrics"`
}

// Categories returns the distinct sheet categories present, ascending.
func (d *CompanyDataset) Categories() []string {
	seen := make(map[string]struct{})
	for _, m := range d.Metrics {
		if m.Category != "" {
			seen[m.Category] = struct{}{}
		}
	}
	cats := make([]string, 0, len(seen))
	for c := range seen {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	return cats
}

// MetricsFor returns the metrics belonging to one category.
func (d *CompanyDataset) MetricsFor(category string) []CompanyMetric {
	var out []CompanyMetric
	for _, m := range d.Metrics {
		if m.Category == category {
			out = append(out, m)
		}
	}
	return out
}

// YearColumns returns the union of reported years across all metrics in a
// category, ascending.
func (d *CompanyDataset) YearColumns(category string) []int {
	seen := make(map[int]struct{})
	for _, m := range d.MetricsFor(category) {
		for y := range m.Values {
			seen[y] = struct{}{}
		}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}
