// Package xlsx renders an assembled report as a single-sheet Excel workbook.
package xlsx

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"finextract/internal/domain"
	"finextract/internal/report"
)

// DefaultSheetName is used when no sheet name is configured.
const DefaultSheetName = "Extraction"

const (
	labelColumnWidth = 32
	valueColumnWidth = 14
	notesColumnWidth = 40
)

// Write renders r into a workbook with one sheet: a bold header row followed by the data rows.
func Write(w io.Writer, r *domain.Report, sheet string) error {
	if sheet == "" {
		sheet = DefaultSheetName
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	cells := report.Cells(r)
	for i, row := range cells {
		addr, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, addr, &values); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	if err := styleSheet(f, sheet, r.Columns); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func styleSheet(f *excelize.File, sheet string, columns []string) error {
	if len(columns) == 0 {
		return nil
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(columns), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	for i, col := range columns {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		width := float64(valueColumnWidth)
		switch {
		case i == 0:
			width = labelColumnWidth
		case col == report.ColumnNotes:
			width = notesColumnWidth
		}
		if err := f.SetColWidth(sheet, name, name, width); err != nil {
			return fmt.Errorf("sizing column %s: %w", name, err)
		}
	}
	return nil
}
