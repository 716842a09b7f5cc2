package services

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"gripulse/internal/agent"
	"gripulse/internal/config"
	"gripulse/internal/dataprocessing"
	"gripulse/internal/mailer"
	"gripulse/internal/report"
	"gripulse/pkg/contracts/domain"
)

type stubCompleter struct {
	reply string
	err   error
}

func (s *stubCompleter) Complete(context.Context, []domain.ChatMessage) (string, error) {
	return s.reply, s.err
}

func (s *stubCompleter) Configured() bool { return true }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeSheet(t *testing.T, f *excelize.File, sheet string, rows [][]interface{}) {
	t.Helper()
	for i, row := range rows {
		for j, val := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, val))
		}
	}
}

func testFixture(t *testing.T) (*dataprocessing.Loader, *config.Paths) {
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
	require.NoError(t, os.MkdirAll(paths.ExcelDir, 0755))
	require.NoError(t, os.MkdirAll(paths.CompaniesDir, 0755))

	f := excelize.NewFile()
	f.SetSheetName(f.GetSheetName(0), "Energy_Consumption")
	writeSheet(t, f, "Energy_Consumption", [][]interface{}{
		{"Year", "Month", "Value", "Unit"},
		{2022, "Jan", 100.0, "kWh"},
		{2022, "Feb", 110.0, "kWh"},
		{2023, "Jan", 130.0, "kWh"},
	})
	_, err := f.NewSheet("Water_Usage")
	require.NoError(t, err)
	writeSheet(t, f, "Water_Usage", [][]interface{}{
		{"Year", "Month", "Value", "Unit"},
		{2023, "Jan", 40.0, "m3"},
	})
	require.NoError(t, f.SaveAs(filepath.Join(paths.ExcelDir, "Sustainability_data 2023.xlsx")))

	c := excelize.NewFile()
	c.SetSheetName(c.GetSheetName(0), "Energy")
	writeSheet(t, c, "Energy", [][]interface{}{
		{"Metric", "Unit", 2021, 2022, 2023},
		{"Electricity Consumption", "kWh", 100.0, 110.0, 120.0},
		{"Fuel Use", "L", 50.0, 52.0, 300.0},
	})
	require.NoError(t, c.SaveAs(filepath.Join(paths.CompaniesDir, "Acme.xlsx")))

	return dataprocessing.NewLoader(paths.ExcelDir, paths.CompaniesDir, discardLogger(), nil), paths
}

func TestDataServiceListFiles(t *testing.T) {
	loader, paths := testFixture(t)
	ds := NewDataService(loader, paths, discardLogger())

	listing, err := ds.ListFiles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Sustainability_data 2023.xlsx"}, listing.IndicatorFiles)
	assert.Equal(t, []string{"Acme.xlsx"}, listing.CompanyFiles)
}

func TestDataServiceGetMeasurements(t *testing.T) {
	loader, paths := testFixture(t)
	ds := NewDataService(loader, paths, discardLogger())

	all, err := ds.GetMeasurements(context.Background(), MeasurementFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	energy, err := ds.GetMeasurements(context.Background(), MeasurementFilter{Indicator: domain.IndicatorEnergy})
	require.NoError(t, err)
	assert.Len(t, energy, 3)

	min := 105.0
	filtered, err := ds.GetMeasurements(context.Background(), MeasurementFilter{
		Indicator: domain.IndicatorEnergy,
		MinValue:  &min,
	})
	require.NoError(t, err)
	assert.Len(t, filtered, 2)

	year2023, err := ds.GetMeasurements(context.Background(), MeasurementFilter{Year: 2023})
	require.NoError(t, err)
	assert.Len(t, year2023, 2)
}

func TestDataServiceDescribe(t *testing.T) {
	loader, paths := testFixture(t)
	ds := NewDataService(loader, paths, discardLogger())

	stats, err := ds.Describe(context.Background(), MeasurementFilter{Indicator: domain.IndicatorEnergy})
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Count)
	assert.InDelta(t, 113.33, stats.Mean, 0.01)
	assert.Equal(t, 100.0, stats.Min)
	assert.Equal(t, 130.0, stats.Max)

	_, err = ds.Describe(context.Background(), MeasurementFilter{Year: 1999})
	assert.ErrorIs(t, err, ErrNoDataFound)
}

func TestDataServiceDownloadCSV(t *testing.T) {
	loader, paths := testFixture(t)
	ds := NewDataService(loader, paths, discardLogger())

	data, name, err := ds.DownloadCSV(context.Background(), MeasurementFilter{Indicator: domain.IndicatorWater})
	require.NoError(t, err)
	assert.Equal(t, "water_measurements.csv", name)
	assert.Contains(t, string(data), "Water_Usage")
}

func TestAnalyticsServiceYearlyTotals(t *testing.T) {
	loader, _ := testFixture(t)
	as := NewAnalyticsService(loader, discardLogger())

	totals, err := as.YearlyTotals(context.Background(), domain.IndicatorEnergy)
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, 210.0, totals[0].Total)
	assert.Equal(t, 130.0, totals[1].Total)
}

func TestAnalyticsServiceForecast(t *testing.T) {
	loader, _ := testFixture(t)
	as := NewAnalyticsService(loader, discardLogger())

	fc, err := as.Forecast(context.Background(), domain.IndicatorEnergy)
	require.NoError(t, err)
	assert.Equal(t, 2024, fc.Year)
}

func TestAnalyticsServiceAnomalies(t *testing.T) {
	loader, _ := testFixture(t)
	as := NewAnalyticsService(loader, discardLogger())

	anomalies, err := as.Anomalies(context.Background(), "Acme.xlsx", "Energy", "Fuel Use", 0)
	require.NoError(t, err)
	assert.NotEmpty(t, anomalies)

	_, err = as.Anomalies(context.Background(), "Acme.xlsx", "Energy", "No Such Metric", 0)
	assert.Error(t, err)
}

func TestAnalyticsServiceESGScore(t *testing.T) {
	loader, _ := testFixture(t)
	as := NewAnalyticsService(loader, discardLogger())

	score, err := as.ESGScore(context.Background(), "Acme.xlsx")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, score.Overall, 0.0)
	assert.Contains(t, score.Categories, "Energy")
}

func TestAnalyticsServiceComparison(t *testing.T) {
	loader, _ := testFixture(t)
	as := NewAnalyticsService(loader, discardLogger())

	rows, err := as.Comparison(context.Background(), "Acme.xlsx", "Energy", 2022, 2023)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Electricity Consumption", rows[0].Metric)
	assert.Equal(t, 10.0, rows[0].Difference)
}

func TestReportServiceGenerateAndRead(t *testing.T) {
	loader, paths := testFixture(t)
	generator := report.NewGenerator(loader, paths, config.ReportConfig{LogoFile: "company_logo.png"}, discardLogger(), nil)
	m := mailer.NewMailer(config.SMTPConfig{}, discardLogger(), nil)
	rs := NewReportService(generator, m, paths, discardLogger())

	generated, err := rs.GenerateGRI(context.Background(), 2023)
	require.NoError(t, err)

	data, err := rs.Read(context.Background(), generated.Filename)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))

	_, err = rs.Read(context.Background(), "../escape.pdf")
	assert.Error(t, err)

	_, err = rs.Read(context.Background(), "missing.pdf")
	assert.ErrorIs(t, err, ErrReportNotFound)
}

func TestAgentServiceChatSessions(t *testing.T) {
	loader, _ := testFixture(t)
	completer := &stubCompleter{reply: "hello"}
	a := agent.NewAgent(loader, completer, discardLogger(), nil)
	svc := NewAgentService(a, agent.NewDocumentAgent(completer), completer, discardLogger())

	first, err := svc.Chat(context.Background(), "", "hi")
	require.NoError(t, err)
	assert.NotEmpty(t, first.SessionID)
	assert.Equal(t, "hello", first.Answer)

	second, err := svc.Chat(context.Background(), first.SessionID, "again")
	require.NoError(t, err)
	assert.Equal(t, first.SessionID, second.SessionID)

	history, err := svc.History(first.SessionID)
	require.NoError(t, err)
	assert.Len(t, history, 4)

	svc.ResetChat(first.SessionID)
	history, err = svc.History(first.SessionID)
	require.NoError(t, err)
	assert.Empty(t, history)

	_, err = svc.History("unknown")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestHealthService(t *testing.T) {
	_, paths := testFixture(t)
	completer := &stubCompleter{}
	m := mailer.NewMailer(config.SMTPConfig{}, discardLogger(), nil)
	hs := NewHealthService(&config.Config{}, paths, completer, m, discardLogger())

	health := hs.HealthCheck(context.Background())
	assert.Equal(t, "ok", health.Status)

	ready := hs.ReadinessCheck(context.Background())
	assert.Equal(t, "ready", ready.Status)
	email, ok := ready.Services["email"].(ServiceHealth)
	require.True(t, ok)
	assert.Equal(t, "unconfigured", email.Status)

	live := hs.LivenessCheck(context.Background())
	assert.Equal(t, "alive", live.Status)
	assert.NotEmpty(t, hs.Version().Version)
}
