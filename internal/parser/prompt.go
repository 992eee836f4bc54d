package parser

import "strings"

// BuildLineItemPrompt returns the prompt asking a model to extract income statement line
// items from a document excerpt. The answer must be a single JSON object with the keys
// "Currency", "Years" and "Items".
func BuildLineItemPrompt(excerpt string, lineItems []string) string {
	var b strings.Builder
	b.WriteString("You are analyzing a financial statement excerpt.\n\n")
	b.WriteString("Text excerpt:\n")
	b.WriteString(excerpt)
	b.WriteString("\n\nPlease identify and extract the following income statement line items (if present):\n")
	b.WriteString(strings.Join(lineItems, ", "))
	b.WriteString(`

For each line item found, extract:
1. The numeric value (without currency symbols)
2. The year (if mentioned as FY 25, FY 24, 2025, 2024, etc.)

Return ONLY a JSON object with no markdown formatting and no explanation, with this structure:
{
  "Currency": "INR/USD/EUR/etc or Unknown",
  "Years": ["FY 25", "FY 24"],
  "Items": {
    "Total Revenue": {"FY 25": "123456", "FY 24": "Not Found"},
    "PAT": {"FY 25": "45678", "FY 24": "Not Found"}
  }
}

If a line item is NOT found, use "Not Found" as the value.
DO NOT make up values. If unclear, use "Not Found".`)
	return b.String()
}
