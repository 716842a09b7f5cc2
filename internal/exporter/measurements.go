package exporter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"gripulse/pkg/contracts/domain"
)

// measurementHeaders is the column layout for measurement exports.
var measurementHeaders = []string{"Year", "Month", "Category", "Value", "Unit"}

// MeasurementRecords renders measurements as CSV rows. Missing values
// export as empty cells.
func MeasurementRecords(ms []domain.Measurement) [][]string {
	records := make([][]string, 0, len(ms))
	for _, m := range ms {
		value := ""
		if m.Value != nil {
			value = formatFloat(*m.Value)
		}
		records = append(records, []string{
			strconv.Itoa(m.Year),
			strconv.Itoa(m.Month),
			m.Category,
			value,
			m.Unit,
		})
	}
	return records
}

// WriteMeasurements exports measurements to a CSV file under the reports
// directory.
func (w *CSVWriter) WriteMeasurements(filePath string, ms []domain.Measurement) error {
	return w.WriteSimpleCSV(filePath, measurementHeaders, MeasurementRecords(ms))
}

// MeasurementsCSV renders measurements as an in-memory CSV document, as
// served by the filtered download endpoint.
func MeasurementsCSV(ms []domain.Measurement) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(measurementHeaders); err != nil {
		return nil, fmt.Errorf("failed to write headers: %w", err)
	}
	for i, record := range MeasurementRecords(ms) {
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// YearlyTotalRecords renders yearly totals as CSV rows for the analytics
// export.
func YearlyTotalRecords(totals []domain.YearlyTotal) [][]string {
	records := make([][]string, 0, len(totals))
	for _, t := range totals {
		changeAbs, changePct := "", ""
		if t.ChangeAbs != nil {
			changeAbs = formatFloat(*t.ChangeAbs)
		}
		if t.ChangePct != nil {
			changePct = formatFloat(*t.ChangePct)
		}
		records = append(records, []string{
			strconv.Itoa(t.Year),
			formatFloat(t.Total),
			changeAbs,
			changePct,
		})
	}
	return records
}

// WriteYearlyTotals exports yearly totals to a CSV file.
func (w *CSVWriter) WriteYearlyTotals(filePath string, totals []domain.YearlyTotal) error {
	return w.WriteSimpleCSV(filePath,
		[]string{"Year", "Total", "ChangeAbs", "ChangePct"},
		YearlyTotalRecords(totals))
}
