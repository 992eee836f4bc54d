package domain

// LineItem is a canonical income-statement row and the keywords that identify it in text.
type LineItem struct {
	Name     string
	Synonyms []string
}

// Catalog is the ordered set of line items extracted from every document.
// Order defines row order in the assembled report.
type Catalog []LineItem

// Names returns the canonical item names in catalog order.
func (c Catalog) Names() []string {
	names := make([]string, len(c))
	for i, item := range c {
		names[i] = item.Name
	}
	return names
}

// Contains reports whether name is a canonical item of the catalog.
func (c Catalog) Contains(name string) bool {
	for _, item := range c {
		if item.Name == name {
			return true
		}
	}
	return false
}

var incomeStatement = Catalog{
	{Name: "Total Revenue", Synonyms: []string{"total revenue", "revenue from operations", "net revenue", "total income", "sales"}},
	{Name: "Other Income", Synonyms: []string{"other income", "other operating revenue", "other sources"}},
	{Name: "Total Income", Synonyms: []string{"total income", "total revenue and income"}},
	{Name: "Operating Expenses", Synonyms: []string{"total operating expenses", "operating costs", "total expenses"}},
	{Name: "Cost of Materials", Synonyms: []string{"cost of materials consumed", "cost of goods sold", "material cost", "cogs"}},
	{Name: "Employee Expenses", Synonyms: []string{"employee benefit expenses", "employee costs", "staff costs", "salaries"}},
	{Name: "Other Expenses", Synonyms: []string{"other expenses", "administrative expenses"}},
	{Name: "EBITDA", Synonyms: []string{"ebitda", "earnings before interest"}},
	{Name: "Depreciation", Synonyms: []string{"depreciation", "amortization", "depreciation and amortization"}},
	{Name: "EBIT", Synonyms: []string{"ebit", "operating profit", "earnings before interest and tax"}},
	{Name: "Finance Costs", Synonyms: []string{"finance costs", "interest expense", "finance charges"}},
	{Name: "PBT", Synonyms: []string{"profit before tax", "pbt", "earnings before tax"}},
	{Name: "Tax Expense", Synonyms: []string{"tax expense", "income tax", "current tax", "provision for tax"}},
	{Name: "PAT", Synonyms: []string{"profit after tax", "pat", "net profit", "net income"}},
}

// IncomeStatementCatalog returns a copy of the 14-item income statement catalog.
// Callers may not mutate the shared definition.
func IncomeStatementCatalog() Catalog {
	out := make(Catalog, len(incomeStatement))
	for i, item := range incomeStatement {
		syn := make([]string, len(item.Synonyms))
		copy(syn, item.Synonyms)
		out[i] = LineItem{Name: item.Name, Synonyms: syn}
	}
	return out
}
