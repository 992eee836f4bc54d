// Package report turns per-document extractions into one ordered table.
package report

import (
	"fmt"
	"strings"

	"finextract/internal/domain"
)

// Fixed column names.
const (
	ColumnLineItem = "Line Item"
	ColumnCurrency = "Currency"
	ColumnNotes    = "Notes"
	ColumnError    = "Error"
)

// ErrorMessage is the single cell of the report produced when no document yielded text.
const ErrorMessage = "Could not extract financial data from any uploaded files"

// Assembler builds reports with one row per catalog line item and document.
type Assembler struct {
	catalog domain.Catalog
}

// NewAssembler creates an Assembler emitting line items in catalog order.
func NewAssembler(catalog domain.Catalog) *Assembler {
	return &Assembler{catalog: catalog}
}

// Assemble builds the report for docs in input order. Each document contributes a
// separator row, one row per catalog item and a trailing blank row. Year columns are the
// union of every document's years, most recent first. With no documents the result is
// the single-row error table.
func (a *Assembler) Assemble(docs []domain.DocumentExtraction) *domain.Report {
	if len(docs) == 0 {
		return ErrorReport()
	}

	years := YearColumns(docs)
	columns := make([]string, 0, len(years)+3)
	columns = append(columns, ColumnLineItem)
	columns = append(columns, years...)
	columns = append(columns, ColumnCurrency, ColumnNotes)

	rows := make([]domain.ReportRow, 0, len(docs)*(len(a.catalog)+2))
	for i := range docs {
		rows = append(rows, a.documentRows(&docs[i])...)
	}
	return &domain.Report{Columns: columns, Rows: rows}
}

func (a *Assembler) documentRows(doc *domain.DocumentExtraction) []domain.ReportRow {
	rows := make([]domain.ReportRow, 0, len(a.catalog)+2)

	header := make(map[string]string, len(doc.Years))
	for _, y := range doc.Years {
		header[y] = ""
	}
	rows = append(rows, domain.ReportRow{
		Kind:     domain.RowKindSeparator,
		Label:    fmt.Sprintf("=== %s ===", doc.Source),
		Values:   header,
		Currency: doc.Currency,
	})

	for _, item := range a.catalog {
		values := make(map[string]string, len(doc.Years))
		var missing []string
		for _, y := range doc.Years {
			v := doc.Value(item.Name, y)
			values[y] = v
			if v == domain.NotFound {
				missing = append(missing, y)
			}
		}
		rows = append(rows, domain.ReportRow{
			Kind:     domain.RowKindLineItem,
			Label:    item.Name,
			Values:   values,
			Currency: doc.Currency,
			Notes:    missingNote(missing),
		})
	}

	rows = append(rows, domain.ReportRow{Kind: domain.RowKindBlank})
	return rows
}

func missingNote(years []string) string {
	if len(years) == 0 {
		return ""
	}
	return "Missing: " + strings.Join(years, ", ")
}

// YearColumns returns the union of the documents' year labels, most recent first.
func YearColumns(docs []domain.DocumentExtraction) []string {
	seen := make(map[string]bool)
	var years []string
	for i := range docs {
		for _, y := range docs[i].Years {
			if !seen[y] {
				seen[y] = true
				years = append(years, y)
			}
		}
	}
	domain.SortYearLabelsDesc(years)
	return years
}

// ErrorReport returns the single-row table used when nothing could be extracted.
func ErrorReport() *domain.Report {
	return &domain.Report{
		Columns: []string{ColumnError},
		Rows:    []domain.ReportRow{{Kind: domain.RowKindError, Label: ErrorMessage}},
	}
}

// Cells renders the report as a header row followed by one string slice per row, each
// as wide as the header. Year cells that do not apply to a row are blank.
func Cells(r *domain.Report) [][]string {
	out := make([][]string, 0, len(r.Rows)+1)
	out = append(out, append([]string(nil), r.Columns...))

	for _, row := range r.Rows {
		cells := make([]string, len(r.Columns))
		if row.Kind == domain.RowKindBlank {
			out = append(out, cells)
			continue
		}
		for i, col := range r.Columns {
			switch {
			case i == 0:
				cells[i] = row.Label
			case col == ColumnCurrency:
				cells[i] = row.Currency
			case col == ColumnNotes:
				cells[i] = row.Notes
			default:
				cells[i] = row.Values[col]
			}
		}
		out = append(out, cells)
	}
	return out
}
