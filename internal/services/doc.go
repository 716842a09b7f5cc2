// Package services implements the business logic layer of GRI Pulse.
// It provides a clean separation between HTTP handlers and data access,
// ensuring that business rules are centralized and testable.
//
// # Architecture
//
// Services follow these architectural principles:
//
//	1. Interface-driven design for testability
//	2. Context propagation for cancellation and tracing
//	3. Dependency injection for loose coupling
//	4. Domain-focused methods that encapsulate business rules
//
// # Available Services
//
// The package provides these core services:
//
//	- DataService: workbook discovery, dataset queries, CSV downloads
//	- AnalyticsService: KPI totals, forecasts, anomalies, ESG scoring
//	- ReportService: PDF generation, listing and email delivery
//	- AgentService: chat agent sessions and document uploads
//	- HealthService: system health checks and version info
//
// # Error Handling
//
// Services return domain-specific errors that handlers transform into
// RFC 7807 problem responses:
//
//	- Validation errors for invalid input
//	- Not found errors for missing resources
//	- Upstream errors for SMTP and LLM failures
package services
