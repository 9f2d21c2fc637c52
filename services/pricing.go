package services

import (
	"sheet-enricher/models"
	"sheet-enricher/utils"
)

const (
	// ForeignSymbol is the one currency symbol priced in USD.
	ForeignSymbol = "$"
	CodeUSD       = "USD"
	// CodeReference is the local currency every price is converted into.
	CodeReference = "RUB"
)

// CurrencyCode resolves a catalog currency symbol to a rate-table code.
func CurrencyCode(symbol string) string {
	if symbol == ForeignSymbol {
		return CodeUSD
	}
	return CodeReference
}

// PriceInReferenceCurrency converts the row price with the rate of its currency.
// When the code has no rate the price is returned untouched.
func PriceInReferenceCurrency(row *models.CatalogRow, rates RateTable) float64 {
	rate, ok := rates.Rate(CurrencyCode(row.Currency))
	if !ok {
		return row.Price
	}
	return row.Price * rate
}

// MarginAmount is the margin rate applied to the converted price.
func MarginAmount(row *models.CatalogRow) float64 {
	return row.MarginRate * row.ConvertedPrice
}

// Pricer fills in converted prices and margins on catalog rows.
type Pricer struct {
	rates  RateTable
	logger *utils.Logger
}

func NewPricer(rates RateTable, logger *utils.Logger) *Pricer {
	return &Pricer{rates: rates, logger: logger}
}

// Apply prices every row and returns how many were converted through the rate table.
func (p *Pricer) Apply(rows []*models.CatalogRow) int {
	converted := 0
	for _, row := range rows {
		if _, ok := p.rates.Rate(CurrencyCode(row.Currency)); ok {
			converted++
		}
		row.ConvertedPrice = PriceInReferenceCurrency(row, p.rates)
		row.MarginAmount = MarginAmount(row)
	}
	p.logger.Info("[pricing] Priced %d rows (%d converted, %d passed through)",
		len(rows), converted, len(rows)-converted)
	return converted
}
