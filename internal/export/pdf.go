package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf/v2"

	"github.com/BerylCAtieno/cheatsheet-api/internal/models"
)

// PDF renders a stored summary as an A4 cheat sheet.
func PDF(record models.SummaryRecord) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTitle(tr(record.DocumentName+" summary"), false)
	pdf.SetAuthor("cheatsheet-api", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(0, 9, tr(record.DocumentName), "", "L", false)
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("%s document, analyzed %s", record.DocumentType, record.CreatedAt.UTC().Format("2006-01-02 15:04 UTC")))
	pdf.Ln(10)

	content := record.Content

	writeSection(pdf, "Summary")
	writeBody(pdf, tr(content.Summary))

	if len(content.KeyTerms) > 0 {
		writeSection(pdf, "Key Terms")
		for _, kt := range content.KeyTerms {
			writeLabeled(pdf, tr(kt.Term), tr(kt.Explanation))
		}
	}

	if len(content.MainConcepts) > 0 {
		writeSection(pdf, "Main Concepts")
		for i, mc := range content.MainConcepts {
			writeLabeled(pdf, tr(fmt.Sprintf("%d. %s", i+1, mc.Title)), tr(mc.Description))
		}
	}

	if len(content.KeyPoints) > 0 {
		writeSection(pdf, "Key Points")
		for _, point := range content.KeyPoints {
			writeBody(pdf, tr("- "+point))
		}
	}

	if len(content.NumericalData) > 0 {
		writeSection(pdf, "Numerical Data")
		for _, nd := range content.NumericalData {
			writeLabeled(pdf, tr(nd.Value), tr(nd.Context+". "+nd.Significance))
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSection(pdf *gofpdf.Fpdf, title string) {
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, title)
	pdf.Ln(10)
}

func writeBody(pdf *gofpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "", 11)
	text = strings.TrimSpace(text)
	if text == "" {
		text = "(empty)"
	}
	pdf.MultiCell(0, 6, text, "", "L", false)
}

func writeLabeled(pdf *gofpdf.Fpdf, label, text string) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.MultiCell(0, 6, label, "", "L", false)
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, text, "", "L", false)
	pdf.Ln(2)
}
