// Package report renders the PDF deliverables: the yearly GRI report,
// per-company ESG reports, and anomaly reports. Charts are rendered
// in-memory with gonum/plot and embedded into fpdf documents.
package report
