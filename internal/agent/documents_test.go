package agent

import (
	"bytes"
	"context"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func samplePDF(t *testing.T, text string) []byte {
	t.Helper()
	doc := fpdf.New("P", "mm", "A4", "")
	doc.AddPage()
	doc.SetFont("Helvetica", "", 12)
	doc.MultiCell(0, 6, text, "", "L", false)
	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	return buf.Bytes()
}

func sampleWorkbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	f.SetSheetName(f.GetSheetName(0), "Energy")
	require.NoError(t, f.SetCellValue("Energy", "A1", "Year"))
	require.NoError(t, f.SetCellValue("Energy", "B1", "Value"))
	require.NoError(t, f.SetCellValue("Energy", "A2", 2023))
	require.NoError(t, f.SetCellValue("Energy", "B2", 150.0))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestUploadPDF(t *testing.T) {
	d := NewDocumentAgent(&stubCompleter{})

	preview, err := d.UploadPDF("report.pdf", samplePDF(t, "Total energy consumption was 1500 kWh."))
	require.NoError(t, err)
	assert.Contains(t, preview, "1500")
	assert.LessOrEqual(t, len(preview), pdfPreviewLimit)
}

func TestUploadPDFInvalid(t *testing.T) {
	d := NewDocumentAgent(&stubCompleter{})

	_, err := d.UploadPDF("junk.pdf", []byte("not a pdf"))
	assert.Error(t, err)
}

func TestUploadWorkbook(t *testing.T) {
	d := NewDocumentAgent(&stubCompleter{})

	sheets, err := d.UploadWorkbook("kpis.xlsx", sampleWorkbook(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"Energy"}, sheets)
}

func TestAskWithDocuments(t *testing.T) {
	completer := &stubCompleter{reply: "Energy was 150 in 2023."}
	d := NewDocumentAgent(completer)

	_, err := d.UploadWorkbook("kpis.xlsx", sampleWorkbook(t))
	require.NoError(t, err)

	answer, err := d.Ask(context.Background(), "What was the energy value?")
	require.NoError(t, err)
	assert.Equal(t, "Energy was 150 in 2023.", answer)

	require.Len(t, completer.calls, 1)
	prompt := completer.calls[0][1].Content
	assert.Contains(t, prompt, "Excel (kpis.xlsx) Sheets:")
	assert.Contains(t, prompt, "Sheet: Energy")
	assert.Contains(t, prompt, "2023")
}
