package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"gripulse/internal/config"
	"gripulse/internal/dataprocessing"
	"gripulse/internal/exporter"
	"gripulse/pkg/contracts/domain"
)

// DataService provides workbook discovery and dataset queries for the
// data explorer endpoints.
type DataService struct {
	loader *dataprocessing.Loader
	paths  *config.Paths
	logger *slog.Logger
}

// NewDataService creates a data service over the configured directories.
func NewDataService(loader *dataprocessing.Loader, paths *config.Paths, logger *slog.Logger) *DataService {
	logger = logger.With(slog.String("service", "data"))
	logger.Info("data service initialized",
		slog.String("excel_dir", paths.ExcelDir),
		slog.String("companies_dir", paths.CompaniesDir))
	return &DataService{
		loader: loader,
		paths:  paths,
		logger: logger,
	}
}

// FileListing groups the discovered source workbooks.
type FileListing struct {
	IndicatorFiles []string `json:"indicator_files"`
	CompanyFiles   []string `json:"company_files"`
}

// ListFiles returns the workbook names under both data directories.
func (ds *DataService) ListFiles(ctx context.Context) (*FileListing, error) {
	indicators, err := ds.loader.ListIndicatorFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to list indicator workbooks: %w", err)
	}
	companies, err := ds.loader.ListCompanyFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to list company workbooks: %w", err)
	}

	ds.logger.DebugContext(ctx, "listed workbooks",
		slog.Int("indicator_files", len(indicators)),
		slog.Int("company_files", len(companies)))

	return &FileListing{IndicatorFiles: indicators, CompanyFiles: companies}, nil
}

// MeasurementFilter narrows a dataset query. Zero values mean no
// constraint on that dimension.
type MeasurementFilter struct {
	Indicator domain.IndicatorKey
	Year      int
	MinValue  *float64
	MaxValue  *float64
}

// GetDataset returns the merged indicator dataset.
func (ds *DataService) GetDataset(ctx context.Context) (*domain.Dataset, error) {
	return ds.loader.LoadAll()
}

// GetMeasurements returns measurements matching the filter.
func (ds *DataService) GetMeasurements(ctx context.Context, filter MeasurementFilter) ([]domain.Measurement, error) {
	dataset, err := ds.loader.LoadAll()
	if err != nil {
		return nil, err
	}

	out := make([]domain.Measurement, 0, len(dataset.Measurements))
	for _, m := range dataset.Measurements {
		if filter.Indicator != "" && m.Indicator != filter.Indicator {
			continue
		}
		if filter.Year != 0 && m.Year != filter.Year {
			continue
		}
		if filter.MinValue != nil && (m.Value == nil || *m.Value < *filter.MinValue) {
			continue
		}
		if filter.MaxValue != nil && (m.Value == nil || *m.Value > *filter.MaxValue) {
			continue
		}
		out = append(out, m)
	}

	ds.logger.DebugContext(ctx, "filtered measurements",
		slog.String("indicator", string(filter.Indicator)),
		slog.Int("year", filter.Year),
		slog.Int("matched", len(out)))
	return out, nil
}

// GetYears returns the reporting years present in the dataset.
func (ds *DataService) GetYears(ctx context.Context) ([]int, error) {
	return ds.loader.AvailableYears()
}

// GetCategories returns the sheet categories present in the dataset.
func (ds *DataService) GetCategories(ctx context.Context) ([]string, error) {
	dataset, err := ds.loader.LoadAll()
	if err != nil {
		return nil, err
	}
	return dataset.Categories(), nil
}

// Describe computes descriptive statistics over the filtered values.
func (ds *DataService) Describe(ctx context.Context, filter MeasurementFilter) (*domain.SeriesStats, error) {
	ms, err := ds.GetMeasurements(ctx, filter)
	if err != nil {
		return nil, err
	}

	values := make([]float64, 0, len(ms))
	for _, m := range ms {
		if m.Value != nil {
			values = append(values, *m.Value)
		}
	}
	if len(values) == 0 {
		return nil, ErrNoDataFound
	}

	stats := dataprocessing.DescribeSeries("value", values)
	return &stats, nil
}

// DownloadCSV renders the filtered measurements as a UTF-8 BOM CSV for
// spreadsheet import.
func (ds *DataService) DownloadCSV(ctx context.Context, filter MeasurementFilter) ([]byte, string, error) {
	ms, err := ds.GetMeasurements(ctx, filter)
	if err != nil {
		return nil, "", err
	}
	if len(ms) == 0 {
		return nil, "", ErrNoDataFound
	}

	data, err := exporter.MeasurementsCSV(ms)
	if err != nil {
		return nil, "", fmt.Errorf("failed to render csv: %w", err)
	}

	name := "measurements.csv"
	if filter.Indicator != "" {
		name = fmt.Sprintf("%s_measurements.csv", filter.Indicator)
	}
	return data, name, nil
}

// ListCompanies returns the company names derived from the company
// workbook filenames.
func (ds *DataService) ListCompanies(ctx context.Context) ([]string, error) {
	files, err := ds.loader.ListCompanyFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to list company workbooks: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

// GetCompanyDataset loads one company workbook by filename.
func (ds *DataService) GetCompanyDataset(ctx context.Context, workbook string) (*domain.CompanyDataset, error) {
	dataset, err := ds.loader.LoadCompany(workbook)
	if err != nil {
		return nil, companyWorkbookError(err)
	}
	return dataset, nil
}
