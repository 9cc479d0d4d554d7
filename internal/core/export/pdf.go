package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter implements PDF export using gofpdf, landscape A4
type PDFExporter struct{}

func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

func (p *PDFExporter) Export(table *Table, writer io.Writer) error {
	if len(table.Headers) == 0 {
		return fmt.Errorf("no headers provided")
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 10)
	pdf.AddPage()
	// Core fonts are cp1252; translate so accented names render
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if table.Title != "" {
		pdf.SetFont(fontFamily, "B", 16)
		pdf.Cell(0, 10, tr(table.Title))
		pdf.Ln(12)
	}
	if table.Subtitle != "" {
		pdf.SetFont(fontFamily, "", fontSize)
		pdf.MultiCell(0, 5, tr(table.Subtitle), "", "", false)
		pdf.Ln(4)
	}
	if !table.GeneratedAt.IsZero() {
		pdf.SetFont(fontFamily, "I", 8)
		pdf.Cell(0, 5, fmt.Sprintf("Generated: %s", table.GeneratedAt.Format("2006-01-02 15:04:05")))
		pdf.Ln(8)
	}

	pageWidth, pageHeight := pdf.GetPageSize()
	left, _, right, bottom := pdf.GetMargins()
	colWidth := (pageWidth - left - right) / float64(len(table.Headers))

	drawHeader := func() {
		pdf.SetFont(fontFamily, "B", fontSize)
		pdf.SetFillColor(0x44, 0x72, 0xC4)
		pdf.SetTextColor(255, 255, 255)
		for _, h := range table.Headers {
			pdf.CellFormat(colWidth, 7, tr(h), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont(fontFamily, "", fontSize)
	}
	drawHeader()

	for i, row := range table.Rows {
		if pdf.GetY()+6 > pageHeight-bottom {
			pdf.AddPage()
			drawHeader()
		}
		fill := i%2 == 1
		if fill {
			pdf.SetFillColor(0xF2, 0xF2, 0xF2)
		}
		for _, v := range row {
			pdf.CellFormat(colWidth, 6, tr(truncate(pdf, v, colWidth-2)), "1", 0, "L", fill, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(writer); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

func (p *PDFExporter) ContentType() string {
	return "application/pdf"
}

func (p *PDFExporter) FileExtension() string {
	return ".pdf"
}

// truncate shortens s with "..." until it fits width
func truncate(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > width {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}
