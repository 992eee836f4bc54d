// Package export serializes assembled reports into the supported sink formats.
package export

import (
	"encoding/json"
	"fmt"
	"io"

	"finextract/internal/csvexport"
	"finextract/internal/domain"
	"finextract/internal/export/xlsx"
)

// Options carries sink-specific settings.
type Options struct {
	SheetName string
}

// Write renders r in format to w.
func Write(w io.Writer, format domain.ExportFormat, r *domain.Report, opts Options) error {
	switch format {
	case domain.ExportFormatXLSX:
		return xlsx.Write(w, r, opts.SheetName)
	case domain.ExportFormatCSV:
		return csvexport.Write(w, r)
	case domain.ExportFormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	default:
		return fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, format)
	}
}

// ContentType returns the MIME type of a rendered report.
func ContentType(format domain.ExportFormat) string {
	switch format {
	case domain.ExportFormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case domain.ExportFormatCSV:
		return "text/csv; charset=utf-8"
	default:
		return "application/json; charset=utf-8"
	}
}

// FileName returns base with the extension of format.
func FileName(base string, format domain.ExportFormat) string {
	if base == "" {
		base = "financial_extraction"
	}
	return base + "." + string(format)
}
