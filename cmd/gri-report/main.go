package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"gripulse/internal/config"
	"gripulse/internal/dataprocessing"
	"gripulse/internal/report"
)

func main() {
	year := flag.Int("year", 0, "reporting year for the GRI report (defaults to the latest year with data)")
	company := flag.String("company", "", "company workbook name for a company ESG report instead of the GRI report")
	outDir := flag.String("out", "", "output directory for the PDF (defaults to output/reports)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	paths, err := config.GetPathsFromConfig(&cfg.Paths)
	if err != nil {
		slog.Error("Failed to initialize paths", "error", err)
		os.Exit(1)
	}
	if *outDir != "" {
		paths.ReportsDir = *outDir
	}
	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to ensure directories", "error", err)
		os.Exit(1)
	}

	logger := slog.Default()
	loader := dataprocessing.NewLoader(paths.ExcelDir, paths.CompaniesDir, logger, nil)
	generator := report.NewGenerator(loader, paths, cfg.Report, logger, nil)

	ctx := context.Background()

	if *company != "" {
		generated, err := generator.GenerateCompany(ctx, *company)
		if err != nil {
			slog.Error("Company report generation failed",
				"company", *company, "error", err)
			os.Exit(1)
		}
		fmt.Println(generated.Path)
		return
	}

	if *year == 0 {
		years, err := generator.AvailableYears()
		if err != nil || len(years) == 0 {
			slog.Error("No reporting years available",
				"excel_dir", paths.ExcelDir, "error", err)
			os.Exit(1)
		}
		*year = years[len(years)-1]
		slog.Info("Defaulting to latest year with data", "year", *year)
	}

	generated, err := generator.GenerateGRI(ctx, *year)
	if err != nil {
		slog.Error("GRI report generation failed", "year", *year, "error", err)
		os.Exit(1)
	}
	fmt.Println(generated.Path)
}
