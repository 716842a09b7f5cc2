package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gripulse/internal/config"
	"gripulse/internal/dataprocessing"
	apierrors "gripulse/internal/errors"
	"gripulse/internal/files"
	"gripulse/internal/infrastructure"
	"gripulse/pkg/contracts/domain"
)

// Generator builds the PDF reports and writes them to the reports
// directory.
type Generator struct {
	loader  *dataprocessing.Loader
	paths   *config.Paths
	cfg     config.ReportConfig
	logger  *slog.Logger
	metrics *infrastructure.AppMetrics
}

// NewGenerator creates a report generator.
func NewGenerator(loader *dataprocessing.Loader, paths *config.Paths, cfg config.ReportConfig, logger *slog.Logger, metrics *infrastructure.AppMetrics) *Generator {
	return &Generator{
		loader:  loader,
		paths:   paths,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "report_generator")),
		metrics: metrics,
	}
}

// AvailableYears lists the reporting years a GRI report can cover.
func (g *Generator) AvailableYears() ([]int, error) {
	return g.loader.AvailableYears()
}

// BuildSections assembles the per-indicator section data for one
// reporting year. Indicators without data still get a section so the
// report shows the gap.
func (g *Generator) BuildSections(year int) ([]domain.IndicatorSection, error) {
	ds, err := g.loader.LoadAll()
	if err != nil {
		return nil, err
	}
	return sectionsFromDataset(ds, year), nil
}

func sectionsFromDataset(ds *domain.Dataset, year int) []domain.IndicatorSection {
	var sections []domain.IndicatorSection
	for _, key := range domain.IndicatorOrder {
		ind := domain.Indicators[key]
		ms := ds.FilterIndicator(key)

		section := domain.IndicatorSection{
			Indicator: ind,
			Unit:      domain.Unit(ms),
			Yearly:    dataprocessing.ComputeYearlyTotals(ms),
			Monthly:   dataprocessing.MonthlySeries(ms, year),
			Narrative: dataprocessing.BuildIndicatorNarrative(key, ms, year, domain.Unit(ms)),
		}
		if current, ok := dataprocessing.TotalForYear(section.Yearly, year); ok {
			section.Current = &current
		}
		if fc, ok := dataprocessing.ForecastNextYear(section.Yearly); ok {
			section.Forecast = &fc
		}
		sections = append(sections, section)
	}
	return sections
}

// GenerateGRI builds the yearly GRI report PDF: cover, executive
// summary, one section per indicator, and an appendix of annual raw
// data.
func (g *Generator) GenerateGRI(ctx context.Context, year int) (*domain.GeneratedReport, error) {
	ds, err := g.loader.LoadAll()
	if err != nil {
		return nil, err
	}
	years := ds.Years()
	if !containsYear(years, year) {
		return nil, apierrors.YearNotAvailableError([]int{year}, years)
	}

	sections := sectionsFromDataset(ds, year)

	b := newPDFBuilder(fmt.Sprintf("Sustainability GRI Report %d", year))

	// cover
	if logo := g.paths.LogoPath(g.cfg.LogoFile); config.FileExists(logo) {
		b.logo(logo, 60)
	}
	b.spacer(20)
	b.title("Sustainability GRI Report")
	b.subtitle(g.cfg.Organization)
	b.subtitle(fmt.Sprintf("Reporting Year: %d", year))
	b.pageBreak()

	// executive summary
	b.sectionHeader("Executive Summary")
	for _, s := range sections {
		b.line("- " + dataprocessing.BuildSummaryLine(s.Indicator, s.Yearly, year, s.Unit))
	}
	b.pageBreak()

	for _, s := range sections {
		g.writeIndicatorSection(b, s, year)
		b.pageBreak()
	}

	// appendix
	b.sectionHeader("Appendix - Annual Raw Data")
	for _, s := range sections {
		b.label(s.Indicator.KPIName)
		rows := make([][]string, 0, len(s.Yearly))
		for _, t := range s.Yearly {
			rows = append(rows, []string{
				strconv.Itoa(t.Year),
				dataprocessing.FormatNumber(t.Total),
				s.Unit,
			})
		}
		b.table([]string{"Year", "Total", "Unit"}, rows, []float64{30, 50, 30})
	}

	filename := fmt.Sprintf("Sustainability_GRI_Report_%d.pdf", year)
	return g.finish(ctx, b, domain.ReportKindGRI, filename, year, "")
}

func (g *Generator) writeIndicatorSection(b *pdfBuilder, s domain.IndicatorSection, year int) {
	b.sectionHeader(s.Indicator.KPIName)
	b.line("GRI Reference: " + s.Indicator.GRICode)
	b.spacer(2)

	if s.Current == nil {
		b.paragraph("No data available.")
		return
	}

	changeAbs, changePct := "n/a", "n/a"
	if s.Current.ChangeAbs != nil {
		changeAbs = dataprocessing.FormatNumber(*s.Current.ChangeAbs) + " " + s.Unit
	}
	if s.Current.ChangePct != nil {
		changePct = fmt.Sprintf("%.1f%%", *s.Current.ChangePct)
	}
	b.table(
		[]string{"Metric", "Value"},
		[][]string{
			{"Total", dataprocessing.FormatNumber(s.Current.Total) + " " + s.Unit},
			{"YoY Change", changeAbs},
			{"YoY % Change", changePct},
		},
		[]float64{60, 80},
	)

	if chart := g.renderSectionChart(s); chart != nil {
		if err := b.image(chart, 150); err != nil {
			g.logger.Warn("failed to embed chart",
				slog.String("indicator", string(s.Indicator.Key)),
				slog.String("error", err.Error()))
		}
	}

	b.label("Narrative")
	b.paragraph(s.Narrative)

	if s.Forecast != nil {
		b.label("Outlook")
		b.paragraph(dataprocessing.BuildOutlookText(*s.Forecast, s.Unit))
	}

	if len(s.Monthly) > 0 {
		b.label("Monthly Data")
		rows := make([][]string, 0, len(s.Monthly))
		for _, m := range s.Monthly {
			value := ""
			if m.Value != nil {
				value = dataprocessing.FormatNumber(*m.Value)
			}
			rows = append(rows, []string{strconv.Itoa(m.Month), value, s.Unit})
		}
		b.table([]string{"Month", "Value", "Unit"}, rows, []float64{30, 40, 30})
	}
}

func (g *Generator) renderSectionChart(s domain.IndicatorSection) []byte {
	if len(s.Yearly) == 0 {
		return nil
	}
	years := make([]int, len(s.Yearly))
	values := make([]float64, len(s.Yearly))
	for i, t := range s.Yearly {
		years[i] = t.Year
		values[i] = t.Total
	}
	chart, err := RenderTrendChart(years, values, s.Indicator.KPIName, s.Unit)
	if err != nil {
		g.logger.Warn("failed to render chart",
			slog.String("indicator", string(s.Indicator.Key)),
			slog.String("error", err.Error()))
		return nil
	}
	return chart
}

// GenerateCompany builds the company ESG report: cover with the overall
// score, category score table, per-category KPI table, and a raw data
// snapshot.
func (g *Generator) GenerateCompany(ctx context.Context, workbook string) (*domain.GeneratedReport, error) {
	ds, err := g.loadCompany(workbook)
	if err != nil {
		return nil, err
	}

	score := dataprocessing.ComputeESGScore(ds)

	b := newPDFBuilder(ds.Company + " GRI Sustainability Report")

	if logo := g.paths.LogoPath(g.cfg.LogoFile); config.FileExists(logo) {
		b.logo(logo, 50)
	}
	b.spacer(15)
	b.title(ds.Company)
	b.subtitle("GRI Sustainability Report")
	b.spacer(5)
	b.sectionHeader(fmt.Sprintf("Overall ESG Score: %.2f/100", score.Overall))
	b.pageBreak()

	b.sectionHeader("ESG Category Scores")
	var scoreRows [][]string
	for _, key := range domain.IndicatorOrder {
		ind := domain.Indicators[key]
		label := string(ind.Key)
		label = strings.ToUpper(label[:1]) + label[1:]
		if v, ok := score.Categories[label]; ok {
			scoreRows = append(scoreRows, []string{label, fmt.Sprintf("%.2f", v)})
		}
	}
	b.table([]string{"Category", "Score"}, scoreRows, []float64{60, 40})

	for _, category := range ds.Categories() {
		kpis := dataprocessing.CompanyKPIs(ds, category)
		if len(kpis) == 0 {
			continue
		}
		b.sectionHeader(category + " Key Performance Indicators")
		var rows [][]string
		for _, m := range ds.MetricsFor(category) {
			if v, ok := kpis[m.Name]; ok {
				rows = append(rows, []string{m.Name, dataprocessing.FormatNumber(v) + " " + m.Unit})
			}
		}
		b.table([]string{"Metric", "Latest Value"}, rows, []float64{90, 60})
	}

	b.sectionHeader("Raw Data Snapshot")
	for _, category := range ds.Categories() {
		metrics := ds.MetricsFor(category)
		if len(metrics) == 0 {
			continue
		}
		years := ds.YearColumns(category)

		headers := []string{"Metric"}
		widths := []float64{70}
		for _, y := range years {
			headers = append(headers, strconv.Itoa(y))
			widths = append(widths, 25)
		}

		limit := len(metrics)
		if limit > 5 {
			limit = 5
		}
		var rows [][]string
		for _, m := range metrics[:limit] {
			row := []string{m.Name}
			for _, y := range years {
				if v, ok := m.Values[y]; ok {
					row = append(row, dataprocessing.FormatNumber(v))
				} else {
					row = append(row, "")
				}
			}
			rows = append(rows, row)
		}
		b.label(category)
		b.table(headers, rows, widths)
	}

	filename := fmt.Sprintf("%s_GRI_Report.pdf", ds.Company)
	return g.finish(ctx, b, domain.ReportKindCompany, filename, 0, ds.Company)
}

// GenerateAnomaly builds the anomaly report for one company metric: a
// header naming company, category and KPI, then the flagged years.
func (g *Generator) GenerateAnomaly(ctx context.Context, workbook, category, metricName string) (*domain.GeneratedReport, error) {
	ds, err := g.loadCompany(workbook)
	if err != nil {
		return nil, err
	}

	years, values, ok := dataprocessing.TrendSeries(ds, category, metricName)
	if !ok {
		return nil, apierrors.NotFoundError("metric")
	}

	anomalies := dataprocessing.DetectAnomalies(years, values, dataprocessing.DashboardThreshold)

	b := newPDFBuilder("Anomaly Detection Report")
	b.title("Anomaly Detection Report")
	b.spacer(4)
	b.line("Company: " + ds.Company)
	b.line("Category: " + category)
	b.line("KPI: " + metricName)
	b.spacer(4)

	if len(anomalies) == 0 {
		b.paragraph("No significant anomalies detected.")
	} else {
		rows := make([][]string, 0, len(anomalies))
		for _, a := range anomalies {
			rows = append(rows, []string{
				strconv.Itoa(a.Year),
				dataprocessing.FormatNumber(a.Value),
				dataprocessing.FormatNumber(a.Deviation),
				a.Explanation,
			})
		}
		b.table([]string{"Year", "Value", "Deviation", "Explanation"}, rows,
			[]float64{18, 30, 30, 112})
	}

	filename := fmt.Sprintf("%s_%s_Anomaly_Report.pdf", ds.Company, metricName)
	return g.finish(ctx, b, domain.ReportKindAnomaly, filename, 0, ds.Company)
}

// loadCompany maps loader failures on request-supplied workbook names
// the same way the services layer does.
func (g *Generator) loadCompany(workbook string) (*domain.CompanyDataset, error) {
	ds, err := g.loader.LoadCompany(workbook)
	if err != nil {
		if errors.Is(err, dataprocessing.ErrBadWorkbookName) {
			return nil, apierrors.ErrValidation("company", "Company must be a bare workbook file name")
		}
		return nil, apierrors.NotFoundError("company workbook")
	}
	return ds, nil
}

// ListGenerated returns the PDFs currently in the reports directory.
func (g *Generator) ListGenerated() ([]domain.GeneratedReport, error) {
	discovery := files.NewDiscovery(g.paths.ReportsDir)
	found, err := discovery.FindFilesByPattern(".", "*.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	var out []domain.GeneratedReport
	for _, f := range found {
		out = append(out, domain.GeneratedReport{
			Filename:    f.Name,
			Path:        f.Path,
			SizeBytes:   f.Size,
			GeneratedAt: f.ModTime,
		})
	}
	return out, nil
}

func (g *Generator) finish(ctx context.Context, b *pdfBuilder, kind domain.ReportKind, filename string, year int, company string) (*domain.GeneratedReport, error) {
	if err := os.MkdirAll(g.paths.ReportsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create reports directory: %w", err)
	}

	path := g.paths.ReportPath(filename)
	if err := b.save(path); err != nil {
		return nil, apierrors.NewStorageError("failed to save report", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat report: %w", err)
	}

	g.logger.InfoContext(ctx, "report generated",
		slog.String("kind", string(kind)),
		slog.String("file", filename),
		slog.Int64("size_bytes", info.Size()))
	g.metrics.RecordReport(ctx, string(kind))

	return &domain.GeneratedReport{
		Kind:        kind,
		Filename:    filename,
		Path:        path,
		SizeBytes:   info.Size(),
		Year:        year,
		Company:     company,
		GeneratedAt: time.Now(),
	}, nil
}

func containsYear(years []int, year int) bool {
	for _, y := range years {
		if y == year {
			return true
		}
	}
	return false
}
