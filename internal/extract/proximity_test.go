package extract_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"finextract/internal/extract"
)

var revenueKeywords = []string{"total revenue", "revenue from operations", "net revenue", "total income", "sales"}

func TestProximity_InlineYearTokens(t *testing.T) {
	p := extract.NewProximityExtractor(0)
	text := "Total Revenue for FY 25 stood at 1,234.50 against FY 24 at 980.00"

	assert.Equal(t, "1,234.50", p.Extract(text, revenueKeywords, "FY 25"))
	assert.Equal(t, "980.00", p.Extract(text, revenueKeywords, "FY 24"))
}

func TestProximity_HeaderLayout(t *testing.T) {
	p := extract.NewProximityExtractor(0)
	text := "Particulars FY 25 FY 24\nTotal Revenue 1,234.50 980.00\nOther Income 50.00 40.00\nPAT 120.00 99.10"
	otherIncome := []string{"other income"}
	pat := []string{"profit after tax", "pat"}

	assert.Equal(t, "1,234.50", p.Extract(text, revenueKeywords, "FY 25"))
	assert.Equal(t, "980.00", p.Extract(text, revenueKeywords, "FY 24"))
	assert.Equal(t, "50.00", p.Extract(text, otherIncome, "FY 25"))
	assert.Equal(t, "40.00", p.Extract(text, otherIncome, "FY 24"))
	assert.Equal(t, "120.00", p.Extract(text, pat, "FY 25"))
	assert.Equal(t, "99.10", p.Extract(text, pat, "FY 24"))
}

func TestProximity_ValueBeforeYearToken(t *testing.T) {
	p := extract.NewProximityExtractor(0)
	text := "Total Revenue 1,234.50 (FY 25) and 980.00 (FY 24)"

	assert.Equal(t, "1,234.50", p.Extract(text, revenueKeywords, "FY 25"))
	assert.Equal(t, "980.00", p.Extract(text, revenueKeywords, "FY 24"))
}

func TestProximity_YearRunAfterKeyword(t *testing.T) {
	p := extract.NewProximityExtractor(0)
	text := "Total Revenue FY 25 FY 24 1,234.50 980.00"

	assert.Equal(t, "1,234.50", p.Extract(text, revenueKeywords, "FY 25"))
	assert.Equal(t, "980.00", p.Extract(text, revenueKeywords, "FY 24"))
}

func TestProximity_WindowCountsCharacters(t *testing.T) {
	p := extract.NewProximityExtractor(0)
	// 200 rupee signs are 600 bytes but only 200 characters.
	text := "FY 25 " + strings.Repeat("₹", 200) + " Total Revenue 1,234"

	assert.Equal(t, "1,234", p.Extract(text, revenueKeywords, "FY 25"))

	far := "FY 25 " + strings.Repeat("₹", 260) + " Total Revenue 1,234"
	assert.Equal(t, "", p.Extract(far, revenueKeywords, "FY 25"))
}

func TestProximity_FourDigitYearHeader(t *testing.T) {
	p := extract.NewProximityExtractor(0)
	text := "Year ended March 31 2024 2023\nRevenue from operations 45,210 41,980"

	assert.Equal(t, "45,210", p.Extract(text, revenueKeywords, "2024"))
	assert.Equal(t, "41,980", p.Extract(text, revenueKeywords, "2023"))
}

func TestProximity_CaseInsensitive(t *testing.T) {
	p := extract.NewProximityExtractor(0)
	assert.Equal(t, "500", p.Extract("TOTAL REVENUE FY 25 500", revenueKeywords, "FY 25"))
}

func TestProximity_SingleDigitNoiseSkipped(t *testing.T) {
	p := extract.NewProximityExtractor(0)
	text := "Total Revenue (note 3) FY 25 7 1,234"
	assert.Equal(t, "1,234", p.Extract(text, revenueKeywords, "FY 25"))
}

func TestProximity_TrailingSeparatorTrimmed(t *testing.T) {
	p := extract.NewProximityExtractor(0)
	text := "Total Revenue FY 25 4,500, up from last year"
	assert.Equal(t, "4,500", p.Extract(text, revenueKeywords, "FY 25"))
}

func TestProximity_YearOutsideWindow(t *testing.T) {
	p := extract.NewProximityExtractor(0)
	text := "Total Revenue 1,234.50" + strings.Repeat(" ", 300) + "FY 25"
	assert.Equal(t, "", p.Extract(text, revenueKeywords, "FY 25"))

	wide := extract.NewProximityExtractor(500)
	assert.Equal(t, "1,234.50", wide.Extract(text, revenueKeywords, "FY 25"))
}

func TestProximity_KeywordMissing(t *testing.T) {
	p := extract.NewProximityExtractor(0)
	assert.Equal(t, "", p.Extract("Net profit FY 25 300", revenueKeywords, "FY 25"))
}

func TestProximity_NoQualifyingNumber(t *testing.T) {
	p := extract.NewProximityExtractor(0)
	assert.Equal(t, "", p.Extract("Total Revenue FY 25 was 7", revenueKeywords, "FY 25"))
}

func TestProximity_LaterOccurrenceUsed(t *testing.T) {
	p := extract.NewProximityExtractor(0)
	first := "Total Revenue is discussed below." + strings.Repeat(".", 300)
	text := first + "Total Revenue FY 24 812"
	assert.Equal(t, "812", p.Extract(text, revenueKeywords, "FY 24"))
}

func TestProximity_SynonymOrder(t *testing.T) {
	p := extract.NewProximityExtractor(0)
	text := "Sales FY 25 100" + strings.Repeat(" ", 600) + "Net revenue FY 25 200"
	assert.Equal(t, "200", p.Extract(text, revenueKeywords, "FY 25"))
}

func TestProximity_NeverReturnsWithoutYearNearby(t *testing.T) {
	p := extract.NewProximityExtractor(0)
	pad := strings.Repeat("x", 260)
	texts := []string{
		"FY 25" + pad + "Total Revenue 1,000" + pad + "FY 24",
		"Total Revenue 1,000" + pad + "FY 25 2,000",
	}
	for _, text := range texts {
		assert.Equal(t, "", p.Extract(text, revenueKeywords, "FY 23"))
	}
	assert.Equal(t, "", p.Extract(texts[1], revenueKeywords, "FY 25"))
}
