package domain

import (
	"time"

	"github.com/google/uuid"
)

// DocumentExtraction is the per-document extraction result.
// Items maps line-item name -> year label -> value or NotFound.
type DocumentExtraction struct {
	Source    string                       `json:"source"`
	Currency  string                       `json:"currency"`
	Years     []string                     `json:"years"`
	Items     map[string]map[string]string `json:"items"`
	Found     int                          `json:"found"`
	Escalated bool                         `json:"escalated"`
	ModelUsed string                       `json:"model_used,omitempty"`
}

// NewDocumentExtraction creates an extraction with every catalog slot set to NotFound.
func NewDocumentExtraction(source, currency string, years []string, catalog Catalog) *DocumentExtraction {
	if currency == "" {
		currency = Unknown
	}
	d := &DocumentExtraction{
		Source:   source,
		Currency: currency,
		Years:    append([]string(nil), years...),
		Items:    make(map[string]map[string]string, len(catalog)),
	}
	for _, item := range catalog {
		d.Items[item.Name] = make(map[string]string, len(years))
	}
	d.FillMissing()
	return d
}

// Value returns the value of an (item, year) slot, NotFound when absent.
func (d *DocumentExtraction) Value(item, year string) string {
	if v, ok := d.Items[item][year]; ok && v != "" {
		return v
	}
	return NotFound
}

// FillMissing sets every slot of every item for the current year list that has no
// entry to NotFound, restoring the one-entry-per-year invariant.
func (d *DocumentExtraction) FillMissing() {
	for name, values := range d.Items {
		if values == nil {
			values = make(map[string]string, len(d.Years))
			d.Items[name] = values
		}
		for _, y := range d.Years {
			if v, ok := values[y]; !ok || v == "" {
				values[y] = NotFound
			}
		}
	}
}

// CountFound returns how many (item, year) slots over the current year list hold a value.
func (d *DocumentExtraction) CountFound() int {
	n := 0
	for _, values := range d.Items {
		for _, y := range d.Years {
			if v, ok := values[y]; ok && v != "" && v != NotFound {
				n++
			}
		}
	}
	return n
}

// FallbackResult is the structured answer of the external text-understanding service.
type FallbackResult struct {
	Currency string                       `json:"Currency"`
	Years    []string                     `json:"Years"`
	Items    map[string]map[string]string `json:"Items"`
}

// ReportRow is one row of an assembled report. Values is keyed by year label and only
// carries the years that apply to the row's document.
type ReportRow struct {
	Kind     RowKind           `json:"kind"`
	Label    string            `json:"label"`
	Values   map[string]string `json:"values,omitempty"`
	Currency string            `json:"currency,omitempty"`
	Notes    string            `json:"notes,omitempty"`
}

// Report is an ordered table ready to be handed to a serialization sink.
type Report struct {
	Columns []string    `json:"columns"`
	Rows    []ReportRow `json:"rows"`
}

// ExtractionRun groups the documents processed in one request together with the report.
type ExtractionRun struct {
	ID        uuid.UUID            `db:"id" json:"id"`
	Documents []DocumentExtraction `db:"-" json:"documents"`
	Skipped   []SkippedDocument    `db:"-" json:"skipped,omitempty"`
	Report    *Report              `db:"-" json:"report,omitempty"`
	CreatedAt time.Time            `db:"created_at" json:"created_at"`
}

// SkippedDocument records a source that could not contribute text.
type SkippedDocument struct {
	Source string `json:"source"`
	Reason string `json:"reason"`
}

// SourceFile is an explicitly supplied document: a name (used for type dispatch and as
// the report's source identifier) and its raw bytes.
type SourceFile struct {
	Name string
	Data []byte
}
