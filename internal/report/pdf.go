package report

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

// pdfBuilder wraps fpdf with the house styles shared by all report
// flavors: navy table headers, small body text, A4 portrait.
type pdfBuilder struct {
	doc        *fpdf.Fpdf
	imageCount int
}

func newPDFBuilder(title string) *pdfBuilder {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle(title, true)
	doc.SetAutoPageBreak(true, 15)
	doc.AddPage()
	return &pdfBuilder{doc: doc}
}

func (b *pdfBuilder) title(text string) {
	b.doc.SetFont("Helvetica", "B", 20)
	b.doc.CellFormat(0, 12, text, "", 1, "C", false, 0, "")
	b.doc.Ln(2)
}

func (b *pdfBuilder) subtitle(text string) {
	b.doc.SetFont("Helvetica", "B", 13)
	b.doc.CellFormat(0, 8, text, "", 1, "C", false, 0, "")
	b.doc.Ln(2)
}

func (b *pdfBuilder) sectionHeader(text string) {
	b.doc.SetFont("Helvetica", "B", 14)
	b.doc.CellFormat(0, 9, text, "", 1, "L", false, 0, "")
	b.doc.Ln(1)
}

func (b *pdfBuilder) label(text string) {
	b.doc.SetFont("Helvetica", "B", 10)
	b.doc.CellFormat(0, 6, text, "", 1, "L", false, 0, "")
}

func (b *pdfBuilder) paragraph(text string) {
	b.doc.SetFont("Helvetica", "", 9)
	b.doc.MultiCell(0, 4.5, text, "", "L", false)
	b.doc.Ln(2)
}

func (b *pdfBuilder) line(text string) {
	b.doc.SetFont("Helvetica", "", 9)
	b.doc.CellFormat(0, 5, text, "", 1, "L", false, 0, "")
}

func (b *pdfBuilder) pageBreak() {
	b.doc.AddPage()
}

func (b *pdfBuilder) spacer(h float64) {
	b.doc.Ln(h)
}

// table renders a header row on navy fill followed by gridded body rows.
func (b *pdfBuilder) table(headers []string, rows [][]string, widths []float64) {
	b.doc.SetFont("Helvetica", "B", 9)
	b.doc.SetFillColor(0, 51, 102)
	b.doc.SetTextColor(255, 255, 255)
	for i, h := range headers {
		b.doc.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	b.doc.Ln(-1)

	b.doc.SetFont("Helvetica", "", 9)
	b.doc.SetTextColor(0, 0, 0)
	for _, row := range rows {
		for i := range headers {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			b.doc.CellFormat(widths[i], 6, cell, "1", 0, "L", false, 0, "")
		}
		b.doc.Ln(-1)
	}
	b.doc.Ln(3)
}

// image embeds an in-memory PNG at the current position, scaled to the
// given width.
func (b *pdfBuilder) image(png []byte, width float64) error {
	b.imageCount++
	name := fmt.Sprintf("chart-%d", b.imageCount)

	b.doc.RegisterImageOptionsReader(name,
		fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))
	b.doc.ImageOptions(name, (210-width)/2, -1, width, 0, true,
		fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	b.doc.Ln(3)
	return b.doc.Error()
}

// logo embeds an image file centered at the top of the current page.
func (b *pdfBuilder) logo(path string, width float64) {
	b.doc.ImageOptions(path, (210-width)/2, -1, width, 0, true,
		fpdf.ImageOptions{}, 0, "")
	b.doc.Ln(5)
}

// save writes the document to disk.
func (b *pdfBuilder) save(path string) error {
	if err := b.doc.Error(); err != nil {
		return fmt.Errorf("pdf assembly failed: %w", err)
	}
	if err := b.doc.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}
