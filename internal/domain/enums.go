package domain

// FileType represents the document types the extractor can read text from.
type FileType string

const (
	FileTypePDF FileType = "pdf"
	FileTypeTXT FileType = "txt"
)

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"txt":  FileTypeTXT,
	"text": FileTypeTXT,
}

// RowKind identifies the role of a row in an assembled report.
type RowKind string

const (
	RowKindSeparator RowKind = "separator"
	RowKindLineItem  RowKind = "line_item"
	RowKindBlank     RowKind = "blank"
	RowKindError     RowKind = "error"
)

// ExportFormat is a serialization target for an assembled report.
type ExportFormat string

const (
	ExportFormatXLSX ExportFormat = "xlsx"
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatJSON ExportFormat = "json"
)

// ParseExportFormat validates a user-supplied format name.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch ExportFormat(s) {
	case ExportFormatXLSX, ExportFormatCSV, ExportFormatJSON:
		return ExportFormat(s), nil
	case "":
		return ExportFormatXLSX, nil
	default:
		return "", ErrUnsupportedFormat
	}
}
