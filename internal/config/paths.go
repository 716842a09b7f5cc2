package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains all resolved application paths.
// This is the single source of truth for file locations: workbook input
// directories, generated report output, ETL output, logs and assets.
type Paths struct {
	BaseDir      string
	DataDir      string
	ExcelDir     string
	CompaniesDir string
	ReportsDir   string
	ETLOutDir    string
	LogsDir      string
	AssetsDir    string
}

// GetPaths returns the application paths anchored at the current working
// directory. Workbooks live alongside the process, as they did in the
// original layout (data/excel, data/companies).
func GetPaths() (*Paths, error) {
	return GetPathsFromConfig(&PathsConfig{})
}

// GetPathsFromConfig resolves paths from a PathsConfig, filling defaults
// for any empty entry. Relative paths are anchored at BaseDir.
func GetPathsFromConfig(cfg *PathsConfig) (*Paths, error) {
	base := cfg.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	anchor := func(p, def string) string {
		if p == "" {
			p = def
		}
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}

	return &Paths{
		BaseDir:      base,
		DataDir:      anchor(cfg.DataDir, "data"),
		ExcelDir:     anchor(cfg.ExcelDir, filepath.Join("data", "excel")),
		CompaniesDir: anchor(cfg.CompaniesDir, filepath.Join("data", "companies")),
		ReportsDir:   anchor(cfg.ReportsDir, filepath.Join("output", "reports")),
		ETLOutDir:    anchor(cfg.ETLOutDir, filepath.Join("output", "etl")),
		LogsDir:      anchor(cfg.LogsDir, "logs"),
		AssetsDir:    anchor(cfg.AssetsDir, "assets"),
	}, nil
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.ExcelDir,
		p.CompaniesDir,
		p.ReportsDir,
		p.ETLOutDir,
		p.LogsDir,
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// LogoPath returns the report logo path for the given filename, or the
// empty string when no logo asset exists.
func (p *Paths) LogoPath(filename string) string {
	if filename == "" {
		return ""
	}
	path := filepath.Join(p.AssetsDir, filename)
	if !FileExists(path) {
		return ""
	}
	return path
}

// ReportPath returns the full path for a generated report filename.
func (p *Paths) ReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
