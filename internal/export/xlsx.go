package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/BerylCAtieno/cheatsheet-api/internal/models"
)

const historySheet = "Summaries"

// HistoryXLSX writes one row per summary.
func HistoryXLSX(records []models.SummaryRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", historySheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headers := []string{
		"Created At",
		"Document",
		"Type",
		"Summary",
		"Key Terms",
		"Key Points",
		"Numerical Data",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(historySheet, cell, h)
	}

	for i, r := range records {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(historySheet, cell, v)
		}

		terms := make([]string, 0, len(r.Content.KeyTerms))
		for _, kt := range r.Content.KeyTerms {
			terms = append(terms, kt.Term)
		}
		numbers := make([]string, 0, len(r.Content.NumericalData))
		for _, nd := range r.Content.NumericalData {
			numbers = append(numbers, nd.Value+" ("+nd.Context+")")
		}

		write(1, r.CreatedAt.UTC().Format("2006-01-02 15:04:05"))
		write(2, r.DocumentName)
		write(3, string(r.DocumentType))
		write(4, r.Content.Summary)
		write(5, strings.Join(terms, ", "))
		write(6, strings.Join(r.Content.KeyPoints, "\n"))
		write(7, strings.Join(numbers, "\n"))
	}

	_ = f.SetColWidth(historySheet, "A", "A", 20)
	_ = f.SetColWidth(historySheet, "B", "B", 32)
	_ = f.SetColWidth(historySheet, "C", "C", 12)
	_ = f.SetColWidth(historySheet, "D", "D", 80)
	_ = f.SetColWidth(historySheet, "E", "G", 40)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}
