package domain

import "sort"

// Measurement is a single parsed spreadsheet row: one indicator value for
// one month of a reporting year. Value is nil when the source cell was
// empty or not numeric; parsing is lenient and never fails a row for a bad
// value.
type Measurement struct {
	Year      int          `json:"year" validate:"required,gte=2000,lte=2100"`
	Month     int          `json:"month" validate:"gte=0,lte=12"`
	Indicator IndicatorKey `json:"indicator"`
	Category  string       `json:"category"`
	Value     *float64     `json:"value"`
	Unit      string       `json:"unit"`
}

// HasValue reports whether the measurement carries a numeric value.
func (m Measurement) HasValue() bool {
	return m.Value != nil
}

// Dataset is an in-memory table of measurements loaded from one or more
// workbooks, discarded after the request that loaded it.
type Dataset struct {
	Source       string        `json:"source"`
	Measurements []Measurement `json:"measurements"`
}

// Years returns the distinct reporting years present, ascending.
func (d *Dataset) Years() []int {
	seen := make(map[int]struct{})
	for _, m := range d.Measurements {
		seen[m.Year] = struct{}{}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Categories returns the distinct categories present, ascending.
func (d *Dataset) Categories() []string {
	seen := make(map[string]struct{})
	for _, m := range d.Measurements {
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

// FilterIndicator returns the measurements belonging to one indicator.
func (d *Dataset) FilterIndicator(key IndicatorKey) []Measurement {
	var out []Measurement
	for _, m := range d.Measurements {
		if m.Indicator == key {
			out = append(out, m)
		}
	}
	return out
}

// FilterYear returns the measurements for one reporting year.
func (d *Dataset) FilterYear(year int) []Measurement {
	var out []Measurement
	for _, m := range d.Measurements {
		if m.Year == year {
			out = append(out, m)
		}
	}
	return out
}

// Unit returns the first non-empty unit label in the slice. Workbooks
// carry the unit on every row; the first one wins.
func Unit(ms []Measurement) string {
	for _, m := range ms {
		if m.Unit != "" {
			return m.Unit
		}
	}
	return ""
}
