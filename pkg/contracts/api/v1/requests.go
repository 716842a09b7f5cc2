// Package api contains API contract definitions for GRI Pulse.
// Version v1 represents the current stable API version.
package api

// Analytics API requests

// AnomalyRequest asks for anomaly flags over a metric's year series.
type AnomalyRequest struct {
	Company   string  `json:"company" validate:"required"`
	Category  string  `json:"category" validate:"required"`
	Metric    string  `json:"metric" validate:"required"`
	Threshold float64 `json:"threshold" validate:"omitempty,gt=0"`
}

// ComparisonRequest asks for a year-over-year metric comparison table.
type ComparisonRequest struct {
	Company    string `json:"company" validate:"required"`
	Category   string `json:"category" validate:"required"`
	FirstYear  int    `json:"first_year" validate:"required,gte=2000,lte=2100"`
	SecondYear int    `json:"second_year" validate:"required,gte=2000,lte=2100,nefield=FirstYear"`
}

// Report API requests

// GenerateReportRequest asks for a GRI PDF for one reporting year.
type GenerateReportRequest struct {
	Year int `json:"year" validate:"required,gte=2000,lte=2100"`
}

// CompanyReportRequest asks for a company ESG PDF.
type CompanyReportRequest struct {
	Company string `json:"company" validate:"required"`
}

// EmailReportRequest asks for a generated report to be mailed out.
type EmailReportRequest struct {
	Filename string `json:"filename" validate:"required"`
	To       string `json:"to" validate:"required,email"`
	Cc       string `json:"cc" validate:"omitempty,email"`
	Bcc      string `json:"bcc" validate:"omitempty,email"`
}

// Agent API requests

// AskRequest is a one-shot question to the sustainability agent.
type AskRequest struct {
	Question string `json:"question" validate:"required,min=2,max=2000"`
}

// ChatRequest continues a chat session.
type ChatRequest struct {
	SessionID string `json:"session_id" validate:"omitempty,uuid"`
	Message   string `json:"message" validate:"required,min=1,max=4000"`
}
