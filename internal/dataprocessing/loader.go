package dataprocessing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"gripulse/internal/files"
	"gripulse/internal/infrastructure"
	"gripulse/pkg/contracts/domain"
)

// ErrBadWorkbookName rejects workbook names that are not bare file
// names. Names arrive from API requests and must never resolve outside
// the data directories.
var ErrBadWorkbookName = errors.New("workbook name must be a bare file name")

func checkWorkbookName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return fmt.Errorf("%w: %q", ErrBadWorkbookName, name)
	}
	return nil
}

// Loader loads and merges sustainability workbooks from the configured
// data directories. Datasets are parsed per call and not cached; the
// workbooks are small and editing them must take effect immediately.
type Loader struct {
	discovery    *files.Discovery
	excelDir     string
	companiesDir string
	logger       *slog.Logger
	metrics      *infrastructure.AppMetrics
}

// NewLoader creates a loader over the indicator and company directories.
// metrics may be nil.
func NewLoader(excelDir, companiesDir string, logger *slog.Logger, metrics *infrastructure.AppMetrics) *Loader {
	return &Loader{
		discovery:    files.NewDiscovery(""),
		excelDir:     excelDir,
		companiesDir: companiesDir,
		logger:       logger.With(slog.String("component", "loader")),
		metrics:      metrics,
	}
}

// parseIndicator wraps ParseIndicatorWorkbook with parse metrics.
func (l *Loader) parseIndicator(path string) (*domain.Dataset, error) {
	start := time.Now()
	ds, err := ParseIndicatorWorkbook(l.logger, path)
	if err == nil {
		l.metrics.RecordWorkbookParse(context.Background(), time.Since(start).Seconds())
	}
	return ds, err
}

// parseCompany wraps ParseCompanyWorkbook with parse metrics.
func (l *Loader) parseCompany(path string) (*domain.CompanyDataset, error) {
	start := time.Now()
	ds, err := ParseCompanyWorkbook(l.logger, path)
	if err == nil {
		l.metrics.RecordWorkbookParse(context.Background(), time.Since(start).Seconds())
	}
	return ds, err
}

// ListIndicatorFiles returns the yearly indicator workbook names.
func (l *Loader) ListIndicatorFiles() ([]string, error) {
	return l.listNames(l.excelDir)
}

// ListCompanyFiles returns the per-company workbook names.
func (l *Loader) ListCompanyFiles() ([]string, error) {
	return l.listNames(l.companiesDir)
}

func (l *Loader) listNames(dir string) ([]string, error) {
	found, err := l.discovery.FindWorkbooks(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(found))
	for _, f := range found {
		names = append(names, f.Name)
	}
	return names, nil
}

// LoadAll parses every indicator workbook and merges the measurements
// into one dataset. Workbooks that fail to parse are logged and skipped;
// a partial dataset beats none.
func (l *Loader) LoadAll() (*domain.Dataset, error) {
	found, err := l.discovery.FindWorkbooks(l.excelDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list indicator workbooks: %w", err)
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("no workbooks found in %s", l.excelDir)
	}

	merged := &domain.Dataset{Source: filepath.Base(l.excelDir)}
	for _, f := range found {
		ds, err := l.parseIndicator(f.Path)
		if err != nil {
			l.logger.Warn("skipping workbook",
				slog.String("file", f.Name),
				slog.String("error", err.Error()))
			continue
		}
		merged.Measurements = append(merged.Measurements, ds.Measurements...)
	}

	if len(merged.Measurements) == 0 {
		return nil, fmt.Errorf("no parseable workbooks in %s", l.excelDir)
	}
	return merged, nil
}

// LoadFile parses one indicator workbook by name.
func (l *Loader) LoadFile(name string) (*domain.Dataset, error) {
	if err := checkWorkbookName(name); err != nil {
		return nil, err
	}
	return l.parseIndicator(filepath.Join(l.excelDir, name))
}

// LoadIndicator returns all measurements of one indicator across every
// workbook.
func (l *Loader) LoadIndicator(key domain.IndicatorKey) ([]domain.Measurement, error) {
	ds, err := l.LoadAll()
	if err != nil {
		return nil, err
	}
	ms := ds.FilterIndicator(key)
	if len(ms) == 0 {
		return nil, fmt.Errorf("indicator %s has no measurements", key)
	}
	return ms, nil
}

// LoadCompany parses one company workbook by name.
func (l *Loader) LoadCompany(name string) (*domain.CompanyDataset, error) {
	if err := checkWorkbookName(name); err != nil {
		return nil, err
	}
	return l.parseCompany(filepath.Join(l.companiesDir, name))
}

// AvailableYears returns the union of reporting years across all
// indicator workbooks, ascending.
func (l *Loader) AvailableYears() ([]int, error) {
	ds, err := l.LoadAll()
	if err != nil {
		return nil, err
	}
	return ds.Years(), nil
}
