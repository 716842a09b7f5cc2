package services

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"gripulse/internal/config"
	"gripulse/internal/dataprocessing"
	apierrors "gripulse/internal/errors"
	"gripulse/internal/files"
	"gripulse/internal/mailer"
	"gripulse/internal/report"
	api "gripulse/pkg/contracts/api/v1"
	"gripulse/pkg/contracts/domain"
)

// ReportService orchestrates PDF generation, listing, download and
// email delivery.
type ReportService struct {
	generator *report.Generator
	mailer    *mailer.Mailer
	files     *files.Manager
	logger    *slog.Logger
}

// NewReportService creates a report service.
func NewReportService(generator *report.Generator, m *mailer.Mailer, paths *config.Paths, logger *slog.Logger) *ReportService {
	return &ReportService{
		generator: generator,
		mailer:    m,
		files:     files.NewManager(paths),
		logger:    logger.With(slog.String("service", "report")),
	}
}

// GenerateGRI builds the yearly GRI report.
func (rs *ReportService) GenerateGRI(ctx context.Context, year int) (*domain.GeneratedReport, error) {
	return rs.generator.GenerateGRI(ctx, year)
}

// GenerateCompany builds a company ESG report.
func (rs *ReportService) GenerateCompany(ctx context.Context, workbook string) (*domain.GeneratedReport, error) {
	return rs.generator.GenerateCompany(ctx, workbook)
}

// GenerateAnomaly builds an anomaly report for one company metric.
func (rs *ReportService) GenerateAnomaly(ctx context.Context, workbook, category, metric string) (*domain.GeneratedReport, error) {
	return rs.generator.GenerateAnomaly(ctx, workbook, category, metric)
}

// List returns the generated reports on disk.
func (rs *ReportService) List(ctx context.Context) ([]domain.GeneratedReport, error) {
	return rs.generator.ListGenerated()
}

// Read returns the bytes of one generated report for download. The
// filename must be a bare name; path traversal is rejected.
func (rs *ReportService) Read(ctx context.Context, filename string) ([]byte, error) {
	if filename == "" || strings.ContainsAny(filename, `/\`) || strings.Contains(filename, "..") {
		return nil, apierrors.ErrInvalidParameter
	}

	data, err := rs.files.ReadFile("reports/" + filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	return data, nil
}

// AvailableYears lists the years a GRI report can be generated for.
func (rs *ReportService) AvailableYears(ctx context.Context) ([]int, error) {
	return rs.generator.AvailableYears()
}

// Email sends a generated report as a PDF attachment.
func (rs *ReportService) Email(ctx context.Context, req api.EmailReportRequest) error {
	data, err := rs.Read(ctx, req.Filename)
	if err != nil {
		return err
	}

	year := yearFromReportName(req.Filename)
	sendReq := mailer.SendRequest{
		To:       req.To,
		Cc:       req.Cc,
		Bcc:      req.Bcc,
		Year:     year,
		Filename: req.Filename,
	}
	if err := rs.mailer.SendReport(ctx, sendReq, data); err != nil {
		rs.logger.ErrorContext(ctx, "report email failed",
			slog.String("file", req.Filename),
			slog.String("error", err.Error()))
		return err
	}
	return nil
}

// yearFromReportName extracts the reporting year embedded in a GRI
// report filename, zero when absent.
func yearFromReportName(name string) int {
	year, _ := dataprocessing.YearFromFilename(name)
	return year
}
