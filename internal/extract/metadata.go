package extract

import (
	"regexp"
	"strings"

	"finextract/internal/domain"
)

// DefaultMaxYears caps the fiscal-year labels kept per document.
const DefaultMaxYears = 6

// currencyPatterns are tried in order; the first match wins.
var currencyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\(.*?in\s+(USD|EUR|GBP|INR|JPY|CNY)\s+(?:crores?|millions?|thousands?)`),
	regexp.MustCompile(`(?i)\b(USD|EUR|GBP|INR|JPY|CNY|Rs\.?)\b`),
	regexp.MustCompile(`₹`),
}

type yearPattern struct {
	re       *regexp.Regexp
	twoDigit bool
}

var yearPatterns = []yearPattern{
	{re: regexp.MustCompile(`(?i)\bFY[\s\-]?(\d{2})\b`), twoDigit: true},
	{re: regexp.MustCompile(`(?i)\bFY[\s\-]?'(\d{2})\b`), twoDigit: true},
	{re: regexp.MustCompile(`\b(20\d{2})\b`)},
	{re: regexp.MustCompile(`\b(19\d{2})\b`)},
}

// MetadataDetector finds the reporting currency and fiscal-year labels of a document.
type MetadataDetector struct {
	maxYears int
}

// NewMetadataDetector creates a detector keeping at most maxYears labels (DefaultMaxYears when <= 0).
func NewMetadataDetector(maxYears int) *MetadataDetector {
	if maxYears <= 0 {
		maxYears = DefaultMaxYears
	}
	return &MetadataDetector{maxYears: maxYears}
}

// Detect returns the currency (domain.Unknown when absent) and the year labels, most
// recent first. A document without any year yields []string{domain.Unknown}.
func (d *MetadataDetector) Detect(text string) (currency string, years []string) {
	return DetectCurrency(text), d.DetectYears(text)
}

// DetectCurrency applies the currency patterns in priority order.
func DetectCurrency(text string) string {
	for _, re := range currencyPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if len(m) < 2 {
			// symbol literal
			return "INR"
		}
		code := strings.ToUpper(m[1])
		// "Rs" and "Rs." are rupee abbreviations, reported as the ISO code.
		if strings.HasPrefix(code, "RS") {
			return "INR"
		}
		return code
	}
	return domain.Unknown
}

// DetectYears unions every year pattern's captures, deduplicates, sorts by resolved
// year descending and truncates to the detector's cap.
func (d *MetadataDetector) DetectYears(text string) []string {
	seen := make(map[string]bool)
	var labels []string
	for _, p := range yearPatterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			label := m[1]
			if p.twoDigit {
				label = domain.FYLabel(m[1])
			}
			if seen[label] {
				continue
			}
			seen[label] = true
			labels = append(labels, label)
		}
	}

	if len(labels) == 0 {
		return []string{domain.Unknown}
	}

	domain.SortYearLabelsDesc(labels)
	if len(labels) > d.maxYears {
		labels = labels[:d.maxYears]
	}
	return labels
}
