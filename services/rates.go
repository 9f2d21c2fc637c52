package services

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"sheet-enricher/models"
)

// RateTable maps a currency code to its rate in the reference currency.
// It is built once and only read afterwards, so it is safe to share between goroutines.
type RateTable struct {
	rates map[string]float64
}

// BuildRateTable parses every entry's rate text. Later duplicate codes overwrite earlier ones.
func BuildRateTable(entries []models.RateEntry) (RateTable, error) {
	rates := make(map[string]float64, len(entries))
	for _, e := range entries {
		rate, err := ParseRate(e.Rate)
		if err != nil {
			return RateTable{}, fmt.Errorf("rate %s: %w", strings.TrimSpace(e.Code), err)
		}
		rates[strings.TrimSpace(e.Code)] = rate
	}
	return RateTable{rates: rates}, nil
}

// ParseRate converts decimal-comma text such as "90,5000" to a number.
func ParseRate(text string) (float64, error) {
	f, err := parseDecimal(text)
	if err != nil {
		return 0, &models.ParseError{Column: models.ColRate, Value: text, Err: err}
	}
	return f, nil
}

// parseDecimal accepts plain decimal text with either separator. NaN, Inf and hex forms are rejected.
func parseDecimal(text string) (float64, error) {
	d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(text), ",", "."))
	if err != nil {
		return 0, err
	}
	f, _ := d.Float64()
	return f, nil
}

// Rate returns the rate for code.
func (t RateTable) Rate(code string) (float64, bool) {
	r, ok := t.rates[code]
	return r, ok
}

// Len returns the number of codes in the table.
func (t RateTable) Len() int {
	return len(t.rates)
}

// RatesFromSheet reads code/rate pairs from the rate sheet in row order.
func RatesFromSheet(s *models.Sheet) ([]models.RateEntry, error) {
	if !s.HasColumns(models.ColRateCode, models.ColRate) {
		return nil, &models.StructureError{Table: s.Name, Reason: "missing code or rate column"}
	}
	entries := make([]models.RateEntry, 0, s.Len())
	for i := 0; i < s.Len(); i++ {
		code := strings.TrimSpace(s.Value(i, models.ColRateCode))
		if code == "" {
			continue
		}
		entries = append(entries, models.RateEntry{Code: code, Rate: s.Value(i, models.ColRate)})
	}
	return entries, nil
}
