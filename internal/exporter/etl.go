package exporter

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"gripulse/internal/dataprocessing"
	"gripulse/internal/files"
)

// cleanConcurrency bounds how many files are cleaned at once.
const cleanConcurrency = 4

// CleanRunner performs the batch cleaning pass: every CSV or Excel file
// in the data directory is parsed, stripped of empty columns, flagged
// for anomalies on its KPI column, and written back as <name>.clean.csv.
type CleanRunner struct {
	discovery *files.Discovery
	writer    *CSVWriter
	logger    *slog.Logger
}

// NewCleanRunner creates a clean runner over the given writer.
func NewCleanRunner(writer *CSVWriter, logger *slog.Logger) *CleanRunner {
	return &CleanRunner{
		discovery: files.NewDiscovery(""),
		writer:    writer,
		logger:    logger.With(slog.String("component", "etl")),
	}
}

// Run cleans every data file in dataDir. Per-file failures are logged
// and skipped; the run only fails when the directory itself cannot be
// listed. Returns the output names written.
func (r *CleanRunner) Run(dataDir string) ([]string, error) {
	found, err := r.discovery.FindDataFiles(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list data files: %w", err)
	}

	r.logger.Info("starting batch clean",
		slog.String("data_dir", dataDir),
		slog.Int("files", len(found)))

	var (
		mu      sync.Mutex
		written []string
	)
	g := new(errgroup.Group)
	g.SetLimit(cleanConcurrency)
	for _, f := range found {
		g.Go(func() error {
			outName, err := r.cleanFile(f.Path, f.Name)
			if err != nil {
				r.logger.Warn("failed to clean file, skipping",
					slog.String("file", f.Name),
					slog.String("error", err.Error()))
				return nil
			}
			mu.Lock()
			written = append(written, outName)
			mu.Unlock()
			return nil
		})
	}
	g.Wait()
	sort.Strings(written)

	r.logger.Info("batch clean finished", slog.Int("written", len(written)))
	return written, nil
}

func (r *CleanRunner) cleanFile(path, name string) (string, error) {
	table, err := dataprocessing.ReadTable(path)
	if err != nil {
		return "", err
	}

	table.DropEmptyColumns()

	if col := table.KPIColumn(); col >= 0 {
		r.logger.Info("flagging anomalies",
			slog.String("file", name),
			slog.String("column", table.Headers[col]))
		table.FlagAnomalies(col)
	} else {
		r.logger.Warn("no KPI column found", slog.String("file", name))
	}

	outName := "etl/" + name + ".clean.csv"
	if err := r.writer.WriteCSV(outName, WriteOptions{
		Headers: table.Headers,
		Records: table.Rows,
	}); err != nil {
		return "", err
	}
	return outName, nil
}
