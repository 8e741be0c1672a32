package export

import (
	"fmt"
	"path"
	"strings"

	"github.com/BerylCAtieno/cheatsheet-api/internal/models"
)

const (
	FormatText = "txt"
	FormatPDF  = "pdf"
)

func heading(b *strings.Builder, title string) {
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", len(title)))
	b.WriteString("\n\n")
}

// Text renders a cheat sheet as plain text with one section per category.
// Empty sections are omitted.
func Text(result models.AnalysisResult) string {
	var b strings.Builder

	heading(&b, "DOCUMENT SUMMARY")
	b.WriteString(strings.TrimSpace(result.Summary))
	b.WriteString("\n")

	if len(result.KeyTerms) > 0 {
		b.WriteString("\n\n")
		heading(&b, "KEY TERMS")
		for _, kt := range result.KeyTerms {
			fmt.Fprintf(&b, "%s\n  %s\n\n", strings.ToUpper(kt.Term), kt.Explanation)
		}
	}

	if len(result.MainConcepts) > 0 {
		b.WriteString("\n")
		heading(&b, "MAIN CONCEPTS")
		for i, mc := range result.MainConcepts {
			fmt.Fprintf(&b, "%d. %s\n   %s\n\n", i+1, strings.ToUpper(mc.Title), mc.Description)
		}
	}

	if len(result.KeyPoints) > 0 {
		b.WriteString("\n")
		heading(&b, "KEY POINTS")
		for i, point := range result.KeyPoints {
			fmt.Fprintf(&b, "%d. %s\n\n", i+1, point)
		}
	}

	if len(result.NumericalData) > 0 {
		b.WriteString("\n")
		heading(&b, "NUMERICAL DATA")
		for _, nd := range result.NumericalData {
			fmt.Fprintf(&b, "%s\n  Context: %s\n  Significance: %s\n\n", nd.Value, nd.Context, nd.Significance)
		}
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// FileName is the download name for an exported summary, e.g.
// "report_summary.pdf" for report.pdf.
func FileName(documentName, ext string) string {
	base := path.Base(strings.ReplaceAll(documentName, "\\", "/"))
	base = strings.TrimSuffix(base, path.Ext(base))

	base = strings.Map(func(r rune) rune {
		switch {
		case r == '"' || r == '/' || r == ';' || r < 0x20 || r == 0x7f:
			return '_'
		}
		return r
	}, strings.TrimSpace(base))

	if base == "" || base == "." {
		base = "document"
	}
	return base + "_summary." + ext
}
