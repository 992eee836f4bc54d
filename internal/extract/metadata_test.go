package extract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"finextract/internal/domain"
	"finextract/internal/extract"
)

func TestDetectCurrency(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"explicit notation", "Statement of Profit and Loss (All amounts in INR crores)", "INR"},
		{"explicit notation wins over bare code", "Revenue in USD terms (Figures in EUR millions)", "EUR"},
		{"bare code", "All figures reported in GBP unless stated", "GBP"},
		{"lowercase code", "amounts in usd", "USD"},
		{"rupee abbreviation", "Revenue Rs. 1,200 lakh", "INR"},
		{"rupee abbreviation without period", "Sales Rs 900 crore", "INR"},
		{"rupee symbol", "Revenue ₹ 1,200", "INR"},
		{"bare code beats symbol", "₹ 1,200 or JPY 3,000", "JPY"},
		{"none", "Revenue grew strongly this year", domain.Unknown},
		{"code inside word ignored", "The EUROPE segment", domain.Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extract.DetectCurrency(tt.text))
		})
	}
}

func TestDetectYears_AllPatternsUnioned(t *testing.T) {
	d := extract.NewMetadataDetector(0)
	years := d.DetectYears("Results for FY 25, FY'24 and FY-23 versus calendar 2022 and 1999")
	assert.Equal(t, []string{"FY 25", "FY 24", "FY 23", "2022", "1999"}, years)
}

func TestDetectYears_TwoDigitNormalization(t *testing.T) {
	d := extract.NewMetadataDetector(0)
	years := d.DetectYears("FY 95 compared with FY 05")
	assert.Equal(t, []string{"FY 05", "FY 95"}, years)
}

func TestDetectYears_Deduplicates(t *testing.T) {
	d := extract.NewMetadataDetector(0)
	years := d.DetectYears("FY 25 ... FY25 ... fy 25 ... 2024 ... 2024")
	assert.Equal(t, []string{"FY 25", "2024"}, years)
}

func TestDetectYears_CappedAtSix(t *testing.T) {
	d := extract.NewMetadataDetector(0)
	years := d.DetectYears("2016 2017 2018 2019 2020 2021 2022 2023")
	assert.Equal(t, []string{"2023", "2022", "2021", "2020", "2019", "2018"}, years)
}

func TestDetectYears_CustomCap(t *testing.T) {
	d := extract.NewMetadataDetector(2)
	years := d.DetectYears("2020 2021 2022")
	assert.Equal(t, []string{"2022", "2021"}, years)
}

func TestDetectYears_NoneFound(t *testing.T) {
	d := extract.NewMetadataDetector(0)
	assert.Equal(t, []string{domain.Unknown}, d.DetectYears("no dates in this text"))
	assert.Equal(t, []string{domain.Unknown}, d.DetectYears(""))
}

func TestDetect(t *testing.T) {
	d := extract.NewMetadataDetector(0)
	currency, years := d.Detect("(in USD millions) FY 24 FY 23")
	assert.Equal(t, "USD", currency)
	assert.Equal(t, []string{"FY 24", "FY 23"}, years)
}
