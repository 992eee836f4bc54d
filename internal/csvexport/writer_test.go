package csvexport

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finextract/internal/domain"
	"finextract/internal/report"
)

func TestWrite_ReportRows(t *testing.T) {
	a := domain.NewDocumentExtraction("a.txt", "INR", []string{"FY 25"}, domain.IncomeStatementCatalog())
	a.Items["PAT"]["FY 25"] = "150"
	b := domain.NewDocumentExtraction("b.txt", "USD", []string{"2023"}, domain.IncomeStatementCatalog())
	rep := report.NewAssembler(domain.IncomeStatementCatalog()).Assemble([]domain.DocumentExtraction{*a, *b})

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, rep))

	raw := buf.Bytes()
	require.True(t, bytes.HasPrefix(raw, BOM))

	rows, err := csv.NewReader(bytes.NewReader(raw[len(BOM):])).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 1+2*16)
	assert.Equal(t, []string{"Line Item", "FY 25", "2023", "Currency", "Notes"}, rows[0])
	assert.Equal(t, []string{"=== a.txt ===", "", "", "INR", ""}, rows[1])
	assert.Equal(t, []string{"PAT", "150", "", "INR", ""}, rows[15])
	assert.Equal(t, []string{"", "", "", "", ""}, rows[16])
	assert.Equal(t, []string{"Total Revenue", "", "Not Found", "USD", "Missing: 2023"}, rows[18])
}

func TestWrite_ErrorTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, report.ErrorReport()))

	body := strings.TrimPrefix(buf.String(), string(BOM))
	assert.Equal(t, "Error\n"+report.ErrorMessage+"\n", body)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "Q4_results_FY25", SanitizeFilename("Q4 results (FY25)"))
	assert.Equal(t, "a-b_c", SanitizeFilename("a-b__c"))
	assert.Len(t, SanitizeFilename(strings.Repeat("x", 150)), 100)
}

func TestBuildFilename(t *testing.T) {
	date := time.Now().Format("2006-01-02")
	assert.Equal(t, "financial_extraction_"+date+".xlsx", BuildFilename("financial_extraction", "xlsx"))
	assert.Equal(t, "report_"+date+".csv", BuildFilename("!!!", "csv"))
}
