package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"gripulse/internal/config"
	"gripulse/internal/exporter"
)

func main() {
	inDir := flag.String("in", "", "input directory with CSV/xlsx data files (defaults to the data directory)")
	outDir := flag.String("out", "", "output directory for cleaned CSV files (defaults to output/etl)")
	flag.Parse()

	paths, err := config.GetPaths()
	if err != nil {
		slog.Error("Failed to initialize paths", "error", err)
		os.Exit(1)
	}

	if *inDir == "" {
		*inDir = paths.DataDir
	}
	if *outDir != "" {
		paths.ETLOutDir = *outDir
	}

	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to ensure directories", "error", err)
		os.Exit(1)
	}

	logger := slog.Default()
	runner := exporter.NewCleanRunner(exporter.NewCSVWriter(paths), logger)

	written, err := runner.Run(*inDir)
	if err != nil {
		slog.Error("Batch clean failed", "error", err)
		os.Exit(1)
	}

	for _, name := range written {
		fmt.Println(name)
	}
	slog.Info("Batch clean complete",
		"input_dir", *inDir,
		"output_dir", paths.ETLOutDir,
		"files_written", len(written))
}
