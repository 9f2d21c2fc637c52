package services

import (
	"strconv"
	"strings"

	"sheet-enricher/models"
)

var catalogColumns = []string{
	models.ColCurrency, models.ColPrice, models.ColBrand, models.ColModel, models.ColMarginRate,
}

var marketingColumns = []string{
	models.ColClientID, models.ColDeviceCategory, models.ColDomain, models.ColGoalLocation, models.ColConversion,
}

// DecodeCatalog reads typed rows from the catalog sheet.
func DecodeCatalog(s *models.Sheet) ([]*models.CatalogRow, error) {
	if !s.HasColumns(catalogColumns...) {
		return nil, &models.StructureError{Table: s.Name, Reason: "missing catalog columns"}
	}
	rows := make([]*models.CatalogRow, 0, s.Len())
	for i := 0; i < s.Len(); i++ {
		price, err := parseNumber(s, i, models.ColPrice)
		if err != nil {
			return nil, err
		}
		margin, err := parseNumber(s, i, models.ColMarginRate)
		if err != nil {
			return nil, err
		}
		rows = append(rows, &models.CatalogRow{
			Currency:   strings.TrimSpace(s.Value(i, models.ColCurrency)),
			Price:      price,
			Brand:      s.Value(i, models.ColBrand),
			Model:      s.Value(i, models.ColModel),
			MarginRate: margin,
		})
	}
	return rows, nil
}

// EncodeCatalog writes the derived price columns back onto the sheet.
// rows must be the result of DecodeCatalog on the same sheet.
func EncodeCatalog(s *models.Sheet, rows []*models.CatalogRow) {
	s.EnsureColumn(models.ColConvertedPrice)
	s.EnsureColumn(models.ColMarginAmount)
	for i, r := range rows {
		s.Set(i, models.ColConvertedPrice, formatNumber(r.ConvertedPrice))
		s.Set(i, models.ColMarginAmount, formatNumber(r.MarginAmount))
	}
}

// DecodeMarketing reads typed records from the marketing sheet.
// A blank conversion counts as zero.
func DecodeMarketing(s *models.Sheet) ([]*models.MarketingRecord, error) {
	if !s.HasColumns(marketingColumns...) {
		return nil, &models.StructureError{Table: s.Name, Reason: "missing marketing columns"}
	}
	records := make([]*models.MarketingRecord, 0, s.Len())
	for i := 0; i < s.Len(); i++ {
		var conv float64
		if strings.TrimSpace(s.Value(i, models.ColConversion)) != "" {
			v, err := parseNumber(s, i, models.ColConversion)
			if err != nil {
				return nil, err
			}
			conv = v
		}
		records = append(records, &models.MarketingRecord{
			ClientID:       strings.TrimSpace(s.Value(i, models.ColClientID)),
			DeviceCategory: s.Value(i, models.ColDeviceCategory),
			Domain:         s.Value(i, models.ColDomain),
			GoalLocation:   s.Value(i, models.ColGoalLocation),
			Conversion:     conv,
			Brand:          s.Value(i, models.ColBrand),
			Model:          s.Value(i, models.ColModel),
		})
	}
	return records, nil
}

// EncodeMarketing writes tagged brand and model values back onto the sheet.
func EncodeMarketing(s *models.Sheet, records []*models.MarketingRecord) {
	for i, r := range records {
		s.Set(i, models.ColBrand, r.Brand)
		s.Set(i, models.ColModel, r.Model)
	}
}

func parseNumber(s *models.Sheet, row int, col string) (float64, error) {
	raw := s.Value(row, col)
	v, err := parseDecimal(raw)
	if err != nil {
		// +2: one for the header, one for 1-based spreadsheet rows
		return 0, &models.ParseError{Sheet: s.Name, Row: row + 2, Column: col, Value: raw, Err: err}
	}
	return v, nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
