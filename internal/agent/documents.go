package agent

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	apierrors "gripulse/internal/errors"
	"gripulse/internal/llm"
	"gripulse/pkg/contracts/domain"
)

const (
	// pdfPreviewLimit caps the extract returned to the uploader.
	pdfPreviewLimit = 1500
	// pdfContextLimit caps the text folded into the model prompt.
	pdfContextLimit = 2000
	// sheetPreviewRows caps the rows of each sheet in the prompt.
	sheetPreviewRows = 5
)

const documentSystemPrompt = `You are a professional Sustainability & GRI Expert AI.

Capabilities:
- Answer ANY GRI questions professionally
- Analyze uploaded PDF sustainability reports
- Analyze uploaded Excel KPI data (Energy, Water, Emissions, Waste)
- Never invent numbers if documents are provided`

// DocumentAgent answers questions grounded in uploaded PDF reports and
// KPI workbooks. Extracted content is held in memory per agent.
type DocumentAgent struct {
	mu     sync.Mutex
	llm    llm.Completer
	pdfs   map[string]string
	sheets map[string]map[string][][]string
}

// NewDocumentAgent creates an empty document agent.
func NewDocumentAgent(completer llm.Completer) *DocumentAgent {
	return &DocumentAgent{
		llm:    completer,
		pdfs:   make(map[string]string),
		sheets: make(map[string]map[string][][]string),
	}
}

// UploadPDF extracts the text of a PDF and returns a capped preview.
func (d *DocumentAgent) UploadPDF(name string, data []byte) (string, error) {
	text, err := extractPDFText(data)
	if err != nil {
		return "", apierrors.NewParsingError("failed to extract pdf text", err)
	}

	d.mu.Lock()
	d.pdfs[name] = text
	d.mu.Unlock()

	if len(text) > pdfPreviewLimit {
		text = text[:pdfPreviewLimit]
	}
	return text, nil
}

// UploadWorkbook parses a workbook and returns its sheet names.
func (d *DocumentAgent) UploadWorkbook(name string, data []byte) ([]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, apierrors.NewParsingError("failed to open workbook", err)
	}
	defer f.Close()

	sheets := make(map[string][][]string)
	var names []string
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		if len(rows) > sheetPreviewRows+1 {
			rows = rows[:sheetPreviewRows+1]
		}
		sheets[sheet] = rows
		names = append(names, sheet)
	}

	d.mu.Lock()
	d.sheets[name] = sheets
	d.mu.Unlock()

	return names, nil
}

// Ask answers a question with every uploaded document folded into the
// prompt context.
func (d *DocumentAgent) Ask(ctx context.Context, question string) (string, error) {
	return d.llm.Complete(ctx, []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: documentSystemPrompt},
		{Role: domain.RoleUser, Content: fmt.Sprintf("Question:\n%s\n\nContext:\n%s", question, d.contextText())},
	})
}

func (d *DocumentAgent) contextText() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	var b strings.Builder
	for _, name := range sortedKeys(d.pdfs) {
		text := d.pdfs[name]
		if len(text) > pdfContextLimit {
			text = text[:pdfContextLimit]
		}
		fmt.Fprintf(&b, "\nPDF (%s) Extract:\n%s\n", name, text)
	}
	for _, name := range sortedKeys(d.sheets) {
		fmt.Fprintf(&b, "\nExcel (%s) Sheets:\n", name)
		sheets := d.sheets[name]
		for _, sheet := range sortedKeys(sheets) {
			fmt.Fprintf(&b, "\nSheet: %s\n", sheet)
			for _, row := range sheets[sheet] {
				b.WriteString(strings.Join(row, "\t"))
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}

func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	text, err := io.ReadAll(plain)
	if err != nil {
		return "", err
	}
	return string(text), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
