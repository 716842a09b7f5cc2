// Package exporter writes CSV outputs: filtered measurement downloads,
// yearly totals, and the cleaned files the batch ETL run produces.
//
// CSVWriter handles the file-level concerns (directory creation, UTF-8
// BOM for Excel, append mode) and routes relative paths to the reports
// or ETL output directories. CleanRunner drives the batch cleaning pass
// over the data directory.
package exporter
