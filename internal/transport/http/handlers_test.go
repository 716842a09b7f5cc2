package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"gripulse/internal/agent"
	"gripulse/internal/config"
	"gripulse/internal/dataprocessing"
	apierrors "gripulse/internal/errors"
	"gripulse/internal/mailer"
	"gripulse/internal/middleware"
	"gripulse/internal/report"
	"gripulse/internal/services"
	"gripulse/pkg/contracts/domain"
)

type stubCompleter struct {
	reply string
	err   error
}

func (s *stubCompleter) Complete(context.Context, []domain.ChatMessage) (string, error) {
	return s.reply, s.err
}

func (s *stubCompleter) Configured() bool { return true }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeSheet(t *testing.T, f *excelize.File, sheet string, rows [][]interface{}) {
	t.Helper()
	for i, row := range rows {
		for j, val := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, val))
		}
	}
}

// testServer wires the full API router over a temp-dir data fixture.
func testServer(t *testing.T) *httptest.Server {
	t.Helper()

	base := t.TempDir()
	paths := &config.Paths{
		DataDir:      base,
		ExcelDir:     filepath.Join(base, "excel"),
		CompaniesDir: filepath.Join(base, "companies"),
		ReportsDir:   filepath.Join(base, "reports"),
	}
	require.NoError(t, os.MkdirAll(paths.ExcelDir, 0755))
	require.NoError(t, os.MkdirAll(paths.CompaniesDir, 0755))

	f := excelize.NewFile()
	f.SetSheetName(f.GetSheetName(0), "Energy_Consumption")
	writeSheet(t, f, "Energy_Consumption", [][]interface{}{
		{"Year", "Month", "Value", "Unit"},
		{2022, "Jan", 100.0, "kWh"},
		{2022, "Feb", 110.0, "kWh"},
		{2023, "Jan", 130.0, "kWh"},
	})
	_, err := f.NewSheet("Water_Usage")
	require.NoError(t, err)
	writeSheet(t, f, "Water_Usage", [][]interface{}{
		{"Year", "Month", "Value", "Unit"},
		{2023, "Jan", 40.0, "m3"},
	})
	require.NoError(t, f.SaveAs(filepath.Join(paths.ExcelDir, "Sustainability_data 2023.xlsx")))

	c := excelize.NewFile()
	c.SetSheetName(c.GetSheetName(0), "Energy")
	writeSheet(t, c, "Energy", [][]interface{}{
		{"Metric", "Unit", 2021, 2022, 2023},
		{"Electricity Consumption", "kWh", 100.0, 110.0, 120.0},
		{"Fuel Use", "L", 50.0, 52.0, 300.0},
	})
	require.NoError(t, c.SaveAs(filepath.Join(paths.CompaniesDir, "Acme.xlsx")))

	logger := discardLogger()
	errorHandler := apierrors.NewErrorHandler(logger, false)
	validator := middleware.NewValidationMiddleware(logger, errorHandler)
	loader := dataprocessing.NewLoader(paths.ExcelDir, paths.CompaniesDir, logger, nil)
	completer := &stubCompleter{reply: "Model answer."}

	generator := report.NewGenerator(loader, paths, config.ReportConfig{Organization: "Acme Sustainability"}, logger, nil)
	mail := mailer.NewMailer(config.SMTPConfig{}, logger, nil)

	dataSvc := services.NewDataService(loader, paths, logger)
	analyticsSvc := services.NewAnalyticsService(loader, logger)
	reportSvc := services.NewReportService(generator, mail, paths, logger)
	agentSvc := services.NewAgentService(
		agent.NewAgent(loader, completer, logger, nil),
		agent.NewDocumentAgent(completer),
		completer, logger)

	r := chi.NewRouter()
	r.Mount("/api/data", NewDataHandler(dataSvc, logger, errorHandler).Routes())
	r.Mount("/api/analytics", NewAnalyticsHandler(analyticsSvc, validator, logger, errorHandler).Routes())
	r.Mount("/api/reports", NewReportHandler(reportSvc, validator, logger, errorHandler).Routes())
	r.Mount("/api/agent", NewAgentHandler(agentSvc, validator, logger, errorHandler).Routes())

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, srv *httptest.Server, path string, out interface{}) *http.Response {
	t.Helper()
	resp, err := srv.Client().Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func postJSON(t *testing.T, srv *httptest.Server, path string, body interface{}, out interface{}) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := srv.Client().Post(srv.URL+path, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestGetMeasurements(t *testing.T) {
	srv := testServer(t)

	var body struct {
		Count int `json:"count"`
	}
	resp := getJSON(t, srv, "/api/data/measurements?indicator=water", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, body.Count)
}

func TestGetMeasurementsUnknownIndicator(t *testing.T) {
	srv := testServer(t)

	var problem struct {
		Status int    `json:"status"`
		Type   string `json:"type"`
	}
	resp := getJSON(t, srv, "/api/data/measurements?indicator=bogus", &problem)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, http.StatusBadRequest, problem.Status)
}

func TestGetYearlyTotals(t *testing.T) {
	srv := testServer(t)

	var body struct {
		Yearly []domain.YearlyTotal `json:"yearly"`
	}
	resp := getJSON(t, srv, "/api/analytics/indicators/energy/yearly", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body.Yearly, 2)
	assert.InDelta(t, 210.0, body.Yearly[0].Total, 1e-9)
}

func TestUnknownIndicatorRejected(t *testing.T) {
	srv := testServer(t)

	resp := getJSON(t, srv, "/api/analytics/indicators/bogus/yearly", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDetectAnomaliesEndpoint(t *testing.T) {
	srv := testServer(t)

	var body struct {
		Count int `json:"count"`
	}
	resp := postJSON(t, srv, "/api/analytics/anomalies", map[string]interface{}{
		"company":  "Acme.xlsx",
		"category": "Energy",
		"metric":   "Fuel Use",
	}, &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.GreaterOrEqual(t, body.Count, 1)
}

func TestESGScoreRequiresCompany(t *testing.T) {
	srv := testServer(t)

	resp := getJSON(t, srv, "/api/analytics/esg", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCompanyTraversalRejected(t *testing.T) {
	srv := testServer(t)

	resp := getJSON(t, srv, "/api/analytics/esg?company=..%2f..%2fsecret%2fpayroll.xlsx", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, srv, "/api/reports/company", map[string]interface{}{
		"company": "../../secret/payroll.xlsx",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGenerateAndDownloadReport(t *testing.T) {
	srv := testServer(t)

	var generated domain.GeneratedReport
	resp := postJSON(t, srv, "/api/reports/gri", map[string]interface{}{"year": 2023}, &generated)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Sustainability_GRI_Report_2023.pdf", generated.Filename)

	dl, err := srv.Client().Get(srv.URL + "/api/reports/download/" + generated.Filename)
	require.NoError(t, err)
	defer dl.Body.Close()
	require.Equal(t, http.StatusOK, dl.StatusCode)
	assert.Equal(t, "application/pdf", dl.Header.Get("Content-Type"))

	pdf, err := io.ReadAll(dl.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}

func TestGenerateReportUnknownYear(t *testing.T) {
	srv := testServer(t)

	var problem struct {
		Status    int                    `json:"status"`
		ErrorCode string                 `json:"error_code"`
		Details   map[string]interface{} `json:"details"`
	}
	resp := postJSON(t, srv, "/api/reports/gri", map[string]interface{}{"year": 1999}, &problem)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "YEAR_NOT_AVAILABLE", problem.ErrorCode)
}

func TestDownloadReportTraversalRejected(t *testing.T) {
	srv := testServer(t)

	resp := getJSON(t, srv, "/api/reports/download/..%2fsecrets.pdf", nil)
	assert.NotEqual(t, http.StatusOK, resp.StatusCode)
}

func TestAgentAsk(t *testing.T) {
	srv := testServer(t)

	var answer domain.AgentAnswer
	resp := postJSON(t, srv, "/api/agent/ask", map[string]interface{}{
		"question": "How did energy consumption change in 2023?",
	}, &answer)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Model answer.", answer.Answer)
	assert.False(t, answer.Fallback)
}

func TestAgentChatSession(t *testing.T) {
	srv := testServer(t)

	var first struct {
		SessionID string `json:"session_id"`
		Answer    string `json:"answer"`
	}
	resp := postJSON(t, srv, "/api/agent/chat", map[string]interface{}{
		"message": "hello",
	}, &first)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, first.SessionID)

	var history struct {
		History []domain.ChatMessage `json:"history"`
	}
	resp = getJSON(t, srv, "/api/agent/chat/"+first.SessionID+"/history", &history)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, history.History, 2)

	resp = postJSON(t, srv, "/api/agent/chat/"+first.SessionID+"/reset", map[string]interface{}{}, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestChatHistoryUnknownSession(t *testing.T) {
	srv := testServer(t)

	resp := getJSON(t, srv, "/api/agent/chat/nope/history", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUploadWorkbookDocument(t *testing.T) {
	srv := testServer(t)

	f := excelize.NewFile()
	f.SetSheetName(f.GetSheetName(0), "KPIs")
	writeSheet(t, f, "KPIs", [][]interface{}{
		{"Metric", "Unit", 2023},
		{"Electricity Consumption", "kWh", 120.0},
	})
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	var form bytes.Buffer
	mw := multipart.NewWriter(&form)
	part, err := mw.CreateFormFile("file", "kpis.xlsx")
	require.NoError(t, err)
	_, err = part.Write(buf.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := srv.Client().Post(srv.URL+"/api/agent/documents", mw.FormDataContentType(), &form)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Type   string   `json:"type"`
		Sheets []string `json:"sheets"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "workbook", body.Type)
	assert.Equal(t, []string{"KPIs"}, body.Sheets)
}

func TestUploadUnsupportedExtension(t *testing.T) {
	srv := testServer(t)

	var form bytes.Buffer
	mw := multipart.NewWriter(&form)
	part, err := mw.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("plain text"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := srv.Client().Post(srv.URL+"/api/agent/documents", mw.FormDataContentType(), &form)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDocumentsAsk(t *testing.T) {
	srv := testServer(t)

	var body struct {
		Answer string `json:"answer"`
	}
	resp := postJSON(t, srv, "/api/agent/documents/ask", map[string]interface{}{
		"question": "Summarise uploaded documents",
	}, &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Model answer.", body.Answer)
}
