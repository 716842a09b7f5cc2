package dataprocessing

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"gripulse/pkg/contracts/domain"
)

// Table is a generic header+rows view of a data file, used by the batch
// cleaner which must handle arbitrary CSV and Excel inputs.
type Table struct {
	Headers []string
	Rows    [][]string
}

// kpiColumnNames are the column labels the batch cleaner recognizes as
// the KPI value column.
var kpiColumnNames = map[string]struct{}{
	"value":         {},
	"energy_kwh":    {},
	"co2":           {},
	"co2_tons":      {},
	"water_m3":      {},
	"waste_ton":     {},
	"monthly_value": {},
}

// ReadTable loads a CSV or Excel file into a Table. Excel files read
// their first sheet. Ragged CSV rows are tolerated.
func ReadTable(path string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSVTable(path)
	case ".xlsx", ".xls":
		return readExcelTable(path)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", filepath.Base(path))
	}
}

func readCSVTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("file %s is empty", filepath.Base(path))
	}

	return &Table{Headers: records[0], Rows: records[1:]}, nil
}

func readExcelTable(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", filepath.Base(path))
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s is empty", sheets[0])
	}

	return &Table{Headers: rows[0], Rows: rows[1:]}, nil
}

// DropEmptyColumns removes columns whose header and every cell are empty.
func (t *Table) DropEmptyColumns() {
	keep := make([]int, 0, len(t.Headers))
	for j := range t.Headers {
		if strings.TrimSpace(t.Headers[j]) != "" {
			keep = append(keep, j)
			continue
		}
		empty := true
		for _, row := range t.Rows {
			if j < len(row) && strings.TrimSpace(row[j]) != "" {
				empty = false
				break
			}
		}
		if !empty {
			keep = append(keep, j)
		}
	}
	if len(keep) == len(t.Headers) {
		return
	}

	headers := make([]string, len(keep))
	for i, j := range keep {
		headers[i] = t.Headers[j]
	}
	rows := make([][]string, len(t.Rows))
	for r, row := range t.Rows {
		out := make([]string, len(keep))
		for i, j := range keep {
			if j < len(row) {
				out[i] = row[j]
			}
		}
		rows[r] = out
	}
	t.Headers = headers
	t.Rows = rows
}

// KPIColumn returns the index of the first recognized KPI value column,
// or -1 when none of the known labels appears.
func (t *Table) KPIColumn() int {
	for j, h := range t.Headers {
		if _, ok := kpiColumnNames[strings.ToLower(strings.TrimSpace(h))]; ok {
			return j
		}
	}
	return -1
}

// FlagAnomalies standardizes the given column and appends z_score and
// anomaly_flag columns to every row. Unparsable cells score zero through
// the mean fill.
func (t *Table) FlagAnomalies(column int) {
	values := make([]*float64, len(t.Rows))
	for i, row := range t.Rows {
		if column < len(row) {
			values[i] = ParseNumeric(row[column])
		}
	}

	scores := ZScores(values)

	t.Headers = append(t.Headers, "z_score", "anomaly_flag")
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i],
			fmt.Sprintf("%.4f", scores[i]), flagLabel(ClassifyZScore(scores[i])))
	}
}

func flagLabel(severity domain.AnomalySeverity) string {
	switch severity {
	case domain.SeverityHigh:
		return "High Anomaly"
	case domain.SeverityLow:
		return "Low Anomaly"
	case domain.SeverityWarning:
		return "Warning"
	default:
		return "Normal"
	}
}
