package domain_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"finextract/internal/domain"
)

func TestResolveTwoDigitYear_AllValues(t *testing.T) {
	for n := 0; n < 100; n++ {
		got := domain.ResolveTwoDigitYear(n)
		if n < 50 {
			assert.Equal(t, 2000+n, got, "n=%d", n)
		} else {
			assert.Equal(t, 1900+n, got, "n=%d", n)
		}
	}
}

func TestResolveYear(t *testing.T) {
	tests := []struct {
		label string
		want  int
		ok    bool
	}{
		{"FY 25", 2025, true},
		{"FY 95", 1995, true},
		{"FY 49", 2049, true},
		{"FY 50", 1950, true},
		{"2023", 2023, true},
		{"1998", 1998, true},
		{"FY25", 2025, true},
		{"FY 2024", 2024, true},
		{"Unknown", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := domain.ResolveYear(tt.label)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeYearLabel(t *testing.T) {
	assert.Equal(t, "FY 25", domain.NormalizeYearLabel("FY25"))
	assert.Equal(t, "FY 25", domain.NormalizeYearLabel("fy-'25"))
	assert.Equal(t, "FY 24", domain.NormalizeYearLabel(" FY 24 "))
	assert.Equal(t, "2025", domain.NormalizeYearLabel("FY 2025"))
	assert.Equal(t, "2023", domain.NormalizeYearLabel("2023"))
	assert.Equal(t, "Q3", domain.NormalizeYearLabel("Q3"))
}

func TestYearNumeral(t *testing.T) {
	assert.Equal(t, "25", domain.YearNumeral("FY 25"))
	assert.Equal(t, "2024", domain.YearNumeral("2024"))
}

func TestSortYearLabelsDesc(t *testing.T) {
	labels := []string{"2023", "Unknown", "FY 24", "FY 98", "FY 25"}
	domain.SortYearLabelsDesc(labels)
	assert.Equal(t, []string{"FY 25", "FY 24", "2023", "FY 98", "Unknown"}, labels)
}

func TestNewDocumentExtraction_AllSlotsNotFound(t *testing.T) {
	catalog := domain.IncomeStatementCatalog()
	years := []string{"FY 25", "FY 24"}
	d := domain.NewDocumentExtraction("a.txt", "", years, catalog)

	assert.Equal(t, domain.Unknown, d.Currency)
	assert.Len(t, d.Items, 14)
	for _, item := range catalog {
		for _, y := range years {
			assert.Equal(t, domain.NotFound, d.Items[item.Name][y], fmt.Sprintf("%s/%s", item.Name, y))
		}
	}
	assert.Equal(t, 0, d.CountFound())
}

func TestIncomeStatementCatalog_ReturnsCopy(t *testing.T) {
	c := domain.IncomeStatementCatalog()
	c[0].Synonyms[0] = "mutated"
	c[0].Name = "mutated"

	fresh := domain.IncomeStatementCatalog()
	assert.Equal(t, "Total Revenue", fresh[0].Name)
	assert.Equal(t, "total revenue", fresh[0].Synonyms[0])
	assert.Len(t, fresh, 14)
	assert.Equal(t, "PAT", fresh[13].Name)
}

func TestParseExportFormat(t *testing.T) {
	f, err := domain.ParseExportFormat("")
	assert.NoError(t, err)
	assert.Equal(t, domain.ExportFormatXLSX, f)

	f, err = domain.ParseExportFormat("csv")
	assert.NoError(t, err)
	assert.Equal(t, domain.ExportFormatCSV, f)

	_, err = domain.ParseExportFormat("pdf")
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}
