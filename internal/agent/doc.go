// Package agent implements the sustainability chat agent: one-shot KPI
// questions with deterministic fallback, session chat with history, and
// document-grounded chat over uploaded PDFs and workbooks.
package agent
