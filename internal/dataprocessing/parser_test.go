package dataprocessing

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"gripulse/internal/infrastructure"
	"gripulse/pkg/contracts/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeIndicatorWorkbook builds a minimal yearly workbook with one
// long-format sheet per given category.
func writeIndicatorWorkbook(t *testing.T, dir, name string, sheets map[string][][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	first := true
	for sheet, rows := range sheets {
		if first {
			f.SetSheetName(f.GetSheetName(0), sheet)
			first = false
		} else {
			_, err := f.NewSheet(sheet)
			require.NoError(t, err)
		}
		for i, row := range rows {
			for j, val := range row {
				col, err := excelize.ColumnNumberToName(j + 1)
				require.NoError(t, err)
				require.NoError(t, f.SetCellValue(sheet, col+itoa(i+1), val))
			}
		}
	}

	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path))
	return path
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func TestYearFromFilename(t *testing.T) {
	tests := []struct {
		name string
		file string
		want int
		ok   bool
	}{
		{"standard name", "Sustainability_data 2023.xlsx", 2023, true},
		{"year embedded", "report_2019_final.xlsx", 2019, true},
		{"no year", "metrics.xlsx", 0, false},
		{"full path", "/data/excel/Sustainability_data 2021.xlsx", 2021, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := YearFromFilename(tt.file)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMonth(t *testing.T) {
	tests := []struct {
		cell string
		want int
	}{
		{"jan", 1},
		{"January", 1},
		{" DEC ", 12},
		{"7", 7},
		{"12", 12},
		{"0", 0},
		{"13", 0},
		{"", 0},
		{"n/a", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseMonth(tt.cell), tt.cell)
	}
}

func TestParseNumeric(t *testing.T) {
	v := ParseNumeric("1,234.50")
	require.NotNil(t, v)
	assert.Equal(t, 1234.5, *v)

	assert.Nil(t, ParseNumeric(""))
	assert.Nil(t, ParseNumeric("n/a"))
	assert.Nil(t, ParseNumeric("  "))
}

func TestParseIndicatorWorkbook(t *testing.T) {
	dir := t.TempDir()
	path := writeIndicatorWorkbook(t, dir, "Sustainability_data 2023.xlsx", map[string][][]interface{}{
		"Energy_Consumption": {
			{"Year", "Month", "Value", "Unit"},
			{2023, "Jan", 120.5, "kWh"},
			{2023, "Feb", "1,300", "kWh"},
			{2023, "Mar", "bad", "kWh"},
			{},
		},
		"Water_Usage": {
			{"Month", "Value", "Unit"},
			{"Jan", 40, "m3"},
		},
	})

	ds, err := ParseIndicatorWorkbook(discardLogger(), path)
	require.NoError(t, err)
	require.Len(t, ds.Measurements, 4)

	energy := ds.FilterIndicator(domain.IndicatorEnergy)
	require.Len(t, energy, 3)
	assert.Equal(t, 2023, energy[0].Year)
	assert.Equal(t, 1, energy[0].Month)
	require.NotNil(t, energy[0].Value)
	assert.Equal(t, 120.5, *energy[0].Value)
	assert.Equal(t, "kWh", energy[0].Unit)

	require.NotNil(t, energy[1].Value)
	assert.Equal(t, 1300.0, *energy[1].Value)

	// lenient coercion keeps the row, drops the value
	assert.Nil(t, energy[2].Value)

	// year falls back to the filename when the sheet has no Year column
	water := ds.FilterIndicator(domain.IndicatorWater)
	require.Len(t, water, 1)
	assert.Equal(t, 2023, water[0].Year)
	assert.Equal(t, "Water_Usage", water[0].Category)
}

func TestParseIndicatorWorkbookEmpty(t *testing.T) {
	dir := t.TempDir()
	path := writeIndicatorWorkbook(t, dir, "Sustainability_data 2023.xlsx", map[string][][]interface{}{
		"Sheet1": {{"Notes"}, {"nothing here"}},
	})

	_, err := ParseIndicatorWorkbook(discardLogger(), path)
	assert.Error(t, err)
}

func TestParseCompanyWorkbook(t *testing.T) {
	dir := t.TempDir()

	f := excelize.NewFile()
	f.SetSheetName(f.GetSheetName(0), "Energy")
	rows := [][]interface{}{
		{"Metric", "Unit", "2021", "2022", "2023"},
		{"Electricity use", "kWh", 100, 110, 125},
		{"Diesel use", "L", "", 50, 48},
		{"", "", 1, 2, 3},
	}
	for i, row := range rows {
		for j, val := range row {
			col, err := excelize.ColumnNumberToName(j + 1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Energy", col+itoa(i+1), val))
		}
	}
	path := filepath.Join(dir, "Acme.xlsx")
	require.NoError(t, f.SaveAs(path))

	ds, err := ParseCompanyWorkbook(discardLogger(), path)
	require.NoError(t, err)
	assert.Equal(t, "Acme", ds.Company)
	require.Len(t, ds.Metrics, 2)

	elec := ds.Metrics[0]
	assert.Equal(t, "Energy", elec.Category)
	assert.Equal(t, "Electricity use", elec.Name)
	assert.Equal(t, "kWh", elec.Unit)
	assert.Equal(t, map[int]float64{2021: 100, 2022: 110, 2023: 125}, elec.Values)

	diesel := ds.Metrics[1]
	assert.Equal(t, []int{2022, 2023}, diesel.Years())

	year, value, ok := elec.LatestValue()
	require.True(t, ok)
	assert.Equal(t, 2023, year)
	assert.Equal(t, 125.0, value)
}

func TestLoaderMergesWorkbooks(t *testing.T) {
	excelDir := t.TempDir()
	writeIndicatorWorkbook(t, excelDir, "Sustainability_data 2022.xlsx", map[string][][]interface{}{
		"Energy_Consumption": {
			{"Month", "Value", "Unit"},
			{"Jan", 100, "kWh"},
		},
	})
	writeIndicatorWorkbook(t, excelDir, "Sustainability_data 2023.xlsx", map[string][][]interface{}{
		"Energy_Consumption": {
			{"Month", "Value", "Unit"},
			{"Jan", 130, "kWh"},
		},
	})

	loader := NewLoader(excelDir, t.TempDir(), discardLogger(), nil)

	names, err := loader.ListIndicatorFiles()
	require.NoError(t, err)
	assert.Len(t, names, 2)

	ds, err := loader.LoadAll()
	require.NoError(t, err)
	assert.Equal(t, []int{2022, 2023}, ds.Years())

	years, err := loader.AvailableYears()
	require.NoError(t, err)
	assert.Equal(t, []int{2022, 2023}, years)
}

func TestLoadCompanyRejectsTraversal(t *testing.T) {
	base := t.TempDir()
	companiesDir := filepath.Join(base, "companies")
	require.NoError(t, os.MkdirAll(companiesDir, 0755))

	// A parseable workbook outside the companies directory must stay
	// unreachable through request-supplied names.
	outsideDir := filepath.Join(base, "secret")
	require.NoError(t, os.MkdirAll(outsideDir, 0755))
	writeIndicatorWorkbook(t, outsideDir, "payroll.xlsx", map[string][][]interface{}{
		"Energy": {
			{"Metric", "Unit", "2023"},
			{"Electricity use", "kWh", 100},
		},
	})

	loader := NewLoader(filepath.Join(base, "excel"), companiesDir, discardLogger(), nil)

	for _, name := range []string{
		"../secret/payroll.xlsx",
		"..\\secret\\payroll.xlsx",
		"/etc/passwd",
		"",
	} {
		_, err := loader.LoadCompany(name)
		assert.ErrorIs(t, err, ErrBadWorkbookName, name)

		_, err = loader.LoadFile(name)
		assert.ErrorIs(t, err, ErrBadWorkbookName, name)
	}
}

func TestLoadCompanyBareName(t *testing.T) {
	base := t.TempDir()
	companiesDir := filepath.Join(base, "companies")
	require.NoError(t, os.MkdirAll(companiesDir, 0755))
	writeIndicatorWorkbook(t, companiesDir, "Acme.xlsx", map[string][][]interface{}{
		"Energy": {
			{"Metric", "Unit", "2023"},
			{"Electricity use", "kWh", 100},
		},
	})

	loader := NewLoader(filepath.Join(base, "excel"), companiesDir, discardLogger(), nil)

	ds, err := loader.LoadCompany("Acme.xlsx")
	require.NoError(t, err)
	assert.Equal(t, "Acme", ds.Company)
}

func TestLoaderRecordsParseMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	metrics, err := infrastructure.NewAppMetrics(provider.Meter("loader_test"))
	require.NoError(t, err)

	excelDir := t.TempDir()
	writeIndicatorWorkbook(t, excelDir, "Sustainability_data 2023.xlsx", map[string][][]interface{}{
		"Energy_Consumption": {
			{"Month", "Value", "Unit"},
			{"Jan", 130, "kWh"},
		},
	})

	loader := NewLoader(excelDir, t.TempDir(), discardLogger(), metrics)
	_, err = loader.LoadAll()
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var parsed int64
	var durations uint64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch m.Name {
			case "gripulse_workbooks_parsed_total":
				sum, ok := m.Data.(metricdata.Sum[int64])
				require.True(t, ok)
				for _, dp := range sum.DataPoints {
					parsed += dp.Value
				}
			case "gripulse_workbook_parse_seconds":
				hist, ok := m.Data.(metricdata.Histogram[float64])
				require.True(t, ok)
				for _, dp := range hist.DataPoints {
					durations += dp.Count
				}
			}
		}
	}
	assert.Equal(t, int64(1), parsed)
	assert.Equal(t, uint64(1), durations)
}
