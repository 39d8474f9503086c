package formatter

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfContentType   = "application/pdf"
	pdfFileExtension = ".pdf"

	// pdfFontName is the internal name used by gofpdf
	// for the UTF-8 capable font.
	pdfFontName = "DejaVuSans"

	// In the container image fonts are copied next to the binary
	pdfFontRuntimePath = "ttf/DejaVuSans.ttf"

	// Source-relative path (useful when running from repo root with `go run`).
	pdfFontSourcePath = "internal/pkg/formatter/ttf/DejaVuSans.ttf"
)

type PDFFormatter struct{}

func NewPDFFormatter() *PDFFormatter {
	return &PDFFormatter{}
}

// resolveFontPath tries to find the DejaVuSans font in
// runtime layout (next to the binary) or source layout.
func resolveFontPath() string {
	for _, path := range []string{pdfFontRuntimePath, pdfFontSourcePath} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func (pf *PDFFormatter) Format(doc *Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(doc.Title, true)
	pdf.AddPage()

	// Core fonts are cp1252, so text is translated unless the UTF-8 font is bundled
	fontName := "Arial"
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if fontPath := resolveFontPath(); fontPath != "" {
		pdf.AddUTF8Font(pdfFontName, "", fontPath)
		pdf.AddUTF8Font(pdfFontName, "B", fontPath)
		fontName = pdfFontName
		tr = func(s string) string { return s }
	}

	pdf.SetFont(fontName, "B", 18)
	pdf.Cell(0, 10, tr(doc.Title))
	pdf.Ln(10)

	pdf.SetFont(fontName, "", 9)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Session %s, status %s, generated %s", doc.SessionID, doc.Status, doc.GeneratedAt.Format(time.RFC3339))))
	pdf.Ln(10)

	for _, section := range doc.Sections {
		pdf.SetFont(fontName, "B", 14)
		pdf.Cell(0, 8, tr(fmt.Sprintf("%s. %s", section.ID, section.Title)))
		pdf.Ln(9)

		for _, item := range section.Answers {
			pdf.SetFont(fontName, "B", 11)
			pdf.MultiCell(0, 6, tr(fmt.Sprintf("%d. %s", item.Index+1, item.Question)), "", "", false)
			pdf.SetFont(fontName, "", 11)
			pdf.MultiCell(0, 6, tr(item.Answer), "", "", false)
			pdf.Ln(2)
		}
	}

	if lines := reviewLines(doc.Review); lines != nil {
		pdf.SetFont(fontName, "B", 14)
		pdf.Cell(0, 8, tr("Pre-submission review"))
		pdf.Ln(9)

		pdf.SetFont(fontName, "", 11)
		for _, line := range lines {
			pdf.MultiCell(0, 6, tr(line[0]+": "+line[1]), "", "", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (pf *PDFFormatter) ContentType() string {
	return pdfContentType
}

func (pf *PDFFormatter) FileExtension() string {
	return pdfFileExtension
}
