// Package dataprocessing parses sustainability workbooks and computes the
// KPI analytics served by the API and embedded in generated reports.
//
// Parsing covers two workbook shapes: yearly indicator workbooks in long
// format (one sheet per indicator, rows of Year/Month/Value/Unit) and
// per-company workbooks in wide format (a Metric column plus one column
// per reporting year). Parsing is lenient: unparsable numeric cells
// become missing values, empty rows are skipped, and a broken sheet never
// fails the whole workbook.
//
// Analytics cover yearly totals with year-over-year movement, linear
// forecasts, z-score anomaly detection, the fixed-weight ESG score,
// reporting coverage and GRI readiness, comparison tables, descriptive
// statistics, and the narrative text blocks shared by PDF reports and the
// chat agent's fallback answers.
package dataprocessing
