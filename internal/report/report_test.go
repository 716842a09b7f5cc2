package report

import (
	"bytes"
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

	"gripulse/internal/config"
	"gripulse/internal/dataprocessing"
	apierrors "gripulse/internal/errors"
	"gripulse/pkg/contracts/domain"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeWorkbook(t *testing.T, path string, sheets map[string][][]interface{}) {
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
				cell, err := excelize.CoordinatesToCellName(j+1, i+1)
				require.NoError(t, err)
				require.NoError(t, f.SetCellValue(sheet, cell, val))
			}
		}
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, f.SaveAs(path))
}

func testGenerator(t *testing.T) (*Generator, *config.Paths) {
	t.Helper()

	base := t.TempDir()
	paths := &config.Paths{
		DataDir:      base,
		ExcelDir:     filepath.Join(base, "excel"),
		CompaniesDir: filepath.Join(base, "companies"),
		ReportsDir:   filepath.Join(base, "reports"),
		ETLOutDir:    filepath.Join(base, "etl"),
		LogsDir:      filepath.Join(base, "logs"),
	}

	for _, year := range []int{2022, 2023} {
		name := "Sustainability_data " + itoa(year) + ".xlsx"
		writeWorkbook(t, filepath.Join(paths.ExcelDir, name), map[string][][]interface{}{
			"Energy_Consumption": {
				{"Year", "Month", "Value", "Unit"},
				{year, "Jan", 100.0 + float64(year-2022)*20, "kWh"},
				{year, "Feb", 110.0, "kWh"},
			},
			"Water_Usage": {
				{"Year", "Month", "Value", "Unit"},
				{year, "Jan", 40.0, "m3"},
			},
		})
	}

	writeWorkbook(t, filepath.Join(paths.CompaniesDir, "Acme.xlsx"), map[string][][]interface{}{
		"Energy": {
			{"Metric", "Unit", 2021, 2022, 2023},
			{"Electricity Consumption", "kWh", 100.0, 110.0, 120.0},
			{"Fuel Use", "L", 50.0, 55.0, 300.0},
		},
		"Water": {
			{"Metric", "Unit", 2021, 2022, 2023},
			{"Water Withdrawal", "m3", 10.0, 12.0, 11.0},
		},
	})

	loader := dataprocessing.NewLoader(paths.ExcelDir, paths.CompaniesDir, discardLogger(), nil)
	cfg := config.ReportConfig{Organization: "Acme Sustainability", LogoFile: "company_logo.png"}
	return NewGenerator(loader, paths, cfg, discardLogger(), nil), paths
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func TestRenderTrendChart(t *testing.T) {
	png, err := RenderTrendChart(
		[]int{2021, 2022, 2023},
		[]float64{100, 120, 140},
		"Energy Consumption", "kWh")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic), "expected PNG output")

	_, err = RenderTrendChart(nil, nil, "Empty", "")
	assert.Error(t, err)
}

func TestGenerateGRI(t *testing.T) {
	gen, paths := testGenerator(t)

	report, err := gen.GenerateGRI(context.Background(), 2023)
	require.NoError(t, err)

	assert.Equal(t, domain.ReportKindGRI, report.Kind)
	assert.Equal(t, "Sustainability_GRI_Report_2023.pdf", report.Filename)
	assert.Equal(t, 2023, report.Year)
	assert.Positive(t, report.SizeBytes)

	data, err := os.ReadFile(paths.ReportPath(report.Filename))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestGenerateGRIUnknownYear(t *testing.T) {
	gen, _ := testGenerator(t)

	_, err := gen.GenerateGRI(context.Background(), 1999)
	require.Error(t, err)

	var apiErr *apierrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "YEAR_NOT_AVAILABLE", apiErr.ErrorCode)
}

func TestGenerateCompany(t *testing.T) {
	gen, paths := testGenerator(t)

	report, err := gen.GenerateCompany(context.Background(), "Acme.xlsx")
	require.NoError(t, err)

	assert.Equal(t, domain.ReportKindCompany, report.Kind)
	assert.Equal(t, "Acme", report.Company)
	assert.Equal(t, "Acme_GRI_Report.pdf", report.Filename)

	data, err := os.ReadFile(paths.ReportPath(report.Filename))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestGenerateAnomaly(t *testing.T) {
	gen, _ := testGenerator(t)

	report, err := gen.GenerateAnomaly(context.Background(), "Acme.xlsx", "Energy", "Fuel Use")
	require.NoError(t, err)

	assert.Equal(t, domain.ReportKindAnomaly, report.Kind)
	assert.Positive(t, report.SizeBytes)
}

func TestGenerateAnomalyUnknownMetric(t *testing.T) {
	gen, _ := testGenerator(t)

	_, err := gen.GenerateAnomaly(context.Background(), "Acme.xlsx", "Energy", "No Such Metric")
	assert.Error(t, err)
}

func TestBuildSections(t *testing.T) {
	gen, _ := testGenerator(t)

	sections, err := gen.BuildSections(2023)
	require.NoError(t, err)
	require.Len(t, sections, len(domain.IndicatorOrder))

	energy := sections[0]
	assert.Equal(t, domain.IndicatorEnergy, energy.Indicator.Key)
	assert.Equal(t, "kWh", energy.Unit)
	require.NotNil(t, energy.Current)
	assert.Equal(t, 2023, energy.Current.Year)
	assert.NotEmpty(t, energy.Narrative)

	// emissions has no data in the fixtures but still gets a section
	for _, s := range sections {
		if s.Indicator.Key == domain.IndicatorEmissions {
			assert.Nil(t, s.Current)
		}
	}
}

func TestListGenerated(t *testing.T) {
	gen, _ := testGenerator(t)

	reports, err := gen.ListGenerated()
	require.NoError(t, err)
	assert.Empty(t, reports)

	_, err = gen.GenerateGRI(context.Background(), 2022)
	require.NoError(t, err)

	reports, err = gen.ListGenerated()
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "Sustainability_GRI_Report_2022.pdf", reports[0].Filename)
	assert.Positive(t, reports[0].SizeBytes)
}
