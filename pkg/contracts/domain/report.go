package domain

import "time"

// ReportKind identifies the flavor of generated PDF.
type ReportKind string

const (
	ReportKindGRI     ReportKind = "gri"
	ReportKindCompany ReportKind = "company"
	ReportKindAnomaly ReportKind = "anomaly"
)

// GeneratedReport describes a PDF written to the reports directory.
type GeneratedReport struct {
	Kind        ReportKind `json:"kind"`
	Filename    string     `json:"filename"`
	Path        string     `json:"path"`
	SizeBytes   int64      `json:"size_bytes"`
	Year        int        `json:"year,omitempty"`
	Company     string     `json:"company,omitempty"`
	GeneratedAt time.Time  `json:"generated_at"`
}

// IndicatorSection carries the numbers a GRI report section is built from.
type IndicatorSection struct {
	Indicator Indicator     `json:"indicator"`
	Unit      string        `json:"unit"`
	Yearly    []YearlyTotal `json:"yearly"`
	Current   *YearlyTotal  `json:"current"`
	Monthly   []Measurement `json:"monthly"`
	Narrative string        `json:"narrative"`
	Forecast  *Forecast     `json:"forecast"`
}
