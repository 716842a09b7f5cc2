package dataprocessing

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"gripulse/pkg/contracts/domain"
)

var yearPattern = regexp.MustCompile(`(19|20)\d{2}`)

// YearFromFilename extracts the reporting year embedded in a workbook
// filename, e.g. "Sustainability_data 2023.xlsx".
func YearFromFilename(name string) (int, bool) {
	match := yearPattern.FindString(filepath.Base(name))
	if match == "" {
		return 0, false
	}
	year, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return year, true
}

// monthNames maps month name prefixes to month numbers. Workbook authors
// use full names, three-letter abbreviations, and plain numbers
// interchangeably.
var monthNames = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// ParseMonth resolves a month cell to 1..12. Returns 0 for anything it
// cannot resolve.
func ParseMonth(cell string) int {
	cell = strings.TrimSpace(strings.ToLower(cell))
	if cell == "" {
		return 0
	}
	if n, err := strconv.Atoi(cell); err == nil {
		if n >= 1 && n <= 12 {
			return n
		}
		return 0
	}
	if len(cell) >= 3 {
		if n, ok := monthNames[cell[:3]]; ok {
			return n
		}
	}
	return 0
}

// ParseNumeric coerces a cell to a float, tolerating thousands separators
// and surrounding whitespace. Unparsable cells come back nil, never an
// error; bad values mean missing data, not a broken workbook.
func ParseNumeric(cell string) *float64 {
	cell = strings.ReplaceAll(strings.TrimSpace(cell), ",", "")
	if cell == "" {
		return nil
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return nil
	}
	return &v
}

// indicatorForSheet maps a workbook sheet name to a registry entry. Sheet
// names match either the canonical name (Energy_Consumption) or a loose
// category label (Energy, energy usage).
func indicatorForSheet(sheet string) (domain.Indicator, bool) {
	normalized := strings.ToLower(strings.TrimSpace(sheet))
	for _, key := range domain.IndicatorOrder {
		ind := domain.Indicators[key]
		if normalized == strings.ToLower(ind.SheetName) {
			return ind, true
		}
	}
	for _, key := range domain.IndicatorOrder {
		ind := domain.Indicators[key]
		if strings.Contains(normalized, string(ind.Key)) {
			return ind, true
		}
	}
	return domain.Indicator{}, false
}

// ParseIndicatorWorkbook reads one yearly sustainability workbook. Every
// sheet becomes a block of measurements with the trimmed sheet name as
// category; sheets that do not match a registered indicator are kept with
// an empty indicator key so the data explorer still sees them.
func ParseIndicatorWorkbook(logger *slog.Logger, path string) (*domain.Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	fileYear, _ := YearFromFilename(path)

	dataset := &domain.Dataset{Source: filepath.Base(path)}

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			logger.Warn("failed to read sheet, skipping",
				slog.String("file", dataset.Source),
				slog.String("sheet", sheet),
				slog.String("error", err.Error()))
			continue
		}

		ms := parseIndicatorSheet(sheet, rows, fileYear)
		if len(ms) == 0 {
			logger.Debug("sheet yielded no measurements",
				slog.String("file", dataset.Source),
				slog.String("sheet", sheet))
			continue
		}
		dataset.Measurements = append(dataset.Measurements, ms...)
	}

	if len(dataset.Measurements) == 0 {
		return nil, fmt.Errorf("workbook %s contains no measurement rows", dataset.Source)
	}

	logger.Info("workbook parsed",
		slog.String("file", dataset.Source),
		slog.Int("measurements", len(dataset.Measurements)))

	return dataset, nil
}

// parseIndicatorSheet turns a long-format sheet (Year, Month, Value, Unit
// columns under a header row) into measurements.
func parseIndicatorSheet(sheet string, rows [][]string, fileYear int) []domain.Measurement {
	if len(rows) < 2 {
		return nil
	}

	category := strings.TrimSpace(sheet)
	indicator, _ := indicatorForSheet(sheet)

	headerRow, columns := findHeaderRow(rows)
	if headerRow == -1 {
		return nil
	}

	var out []domain.Measurement
	for i := headerRow + 1; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		m := domain.Measurement{
			Year:      fileYear,
			Indicator: indicator.Key,
			Category:  category,
		}

		if idx, ok := columns["year"]; ok && idx < len(row) {
			if y, err := strconv.Atoi(strings.TrimSpace(row[idx])); err == nil {
				m.Year = y
			}
		}
		if idx, ok := columns["month"]; ok && idx < len(row) {
			m.Month = ParseMonth(row[idx])
		}
		if idx, ok := columns["value"]; ok && idx < len(row) {
			m.Value = ParseNumeric(row[idx])
		}
		if idx, ok := columns["unit"]; ok && idx < len(row) {
			m.Unit = strings.TrimSpace(row[idx])
		}

		if m.Year == 0 {
			continue
		}
		out = append(out, m)
	}
	return out
}

// findHeaderRow locates the header row and maps the named columns. The
// value column falls back to the first column whose header is not one of
// the known labels, matching sheets that title the column after the
// indicator itself.
func findHeaderRow(rows [][]string) (int, map[string]int) {
	for i, row := range rows {
		if i > 5 {
			break
		}
		columns := make(map[string]int)
		for j, header := range row {
			switch h := strings.ToLower(strings.TrimSpace(header)); {
			case h == "year":
				columns["year"] = j
			case h == "month":
				columns["month"] = j
			case h == "value":
				columns["value"] = j
			case h == "unit":
				columns["unit"] = j
			}
		}
		if _, ok := columns["month"]; !ok {
			continue
		}
		if _, ok := columns["value"]; !ok {
			for j, header := range row {
				h := strings.ToLower(strings.TrimSpace(header))
				if h == "" || h == "year" || h == "month" || h == "unit" {
					continue
				}
				columns["value"] = j
				break
			}
		}
		if _, ok := columns["value"]; ok {
			return i, columns
		}
	}
	return -1, nil
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ParseCompanyWorkbook reads a wide-format company workbook: each sheet is
// a category, a Metric column names the rows, and each four-digit header
// is a year column.
func ParseCompanyWorkbook(logger *slog.Logger, path string) (*domain.CompanyDataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	base := filepath.Base(path)
	dataset := &domain.CompanyDataset{
		Company: strings.TrimSuffix(base, filepath.Ext(base)),
		Source:  base,
	}

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			logger.Warn("failed to read sheet, skipping",
				slog.String("file", base),
				slog.String("sheet", sheet),
				slog.String("error", err.Error()))
			continue
		}
		dataset.Metrics = append(dataset.Metrics, parseCompanySheet(sheet, rows)...)
	}

	if len(dataset.Metrics) == 0 {
		return nil, fmt.Errorf("workbook %s contains no metric rows", base)
	}

	logger.Info("company workbook parsed",
		slog.String("file", base),
		slog.Int("metrics", len(dataset.Metrics)))

	return dataset, nil
}

func parseCompanySheet(sheet string, rows [][]string) []domain.CompanyMetric {
	if len(rows) < 2 {
		return nil
	}

	category := strings.TrimSpace(sheet)
	header := rows[0]

	metricCol := -1
	unitCol := -1
	yearCols := make(map[int]int)
	for j, h := range header {
		trimmed := strings.TrimSpace(h)
		lower := strings.ToLower(trimmed)
		switch {
		case strings.Contains(lower, "metric"):
			metricCol = j
		case lower == "unit":
			unitCol = j
		default:
			if y, err := strconv.Atoi(trimmed); err == nil && len(trimmed) == 4 {
				yearCols[j] = y
			}
		}
	}
	if metricCol == -1 || len(yearCols) == 0 {
		return nil
	}

	var out []domain.CompanyMetric
	for _, row := range rows[1:] {
		if metricCol >= len(row) {
			continue
		}
		name := strings.TrimSpace(row[metricCol])
		if name == "" {
			continue
		}

		metric := domain.CompanyMetric{
			Category: category,
			Name:     name,
			Values:   make(map[int]float64),
		}
		if unitCol != -1 && unitCol < len(row) {
			metric.Unit = strings.TrimSpace(row[unitCol])
		}
		for j, year := range yearCols {
			if j >= len(row) {
				continue
			}
			if v := ParseNumeric(row[j]); v != nil {
				metric.Values[year] = *v
			}
		}
		if len(metric.Values) == 0 {
			continue
		}
		out = append(out, metric)
	}
	return out
}
