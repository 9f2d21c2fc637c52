package models

// Column names of the catalog sheet.
const (
	ColCurrency       = "Валюта"
	ColPrice          = "Цена"
	ColBrand          = "Марка"
	ColModel          = "Модель"
	ColMarginRate     = "Маржинальность"
	ColConvertedPrice = "Итоговая стоимость в рублях"
	ColMarginAmount   = "Маржинальность в рублях"
)

// Column names of the marketing sheet. Brand and model share ColBrand/ColModel.
const (
	ColClientID       = "Client ID"
	ColDeviceCategory = "Device Category"
	ColDomain         = "Domain"
	ColGoalLocation   = "Goal Completion Location"
	ColConversion     = "Конверсия"
)

// Column names of the touch-chain and rate sheets.
const (
	ColConversionSum  = "Сумма конверсий по цепочкам"
	ColConversionFlag = "Признак конверсии"
	ColTouchCount     = "Число касаний"

	ColRateCode = "Букв. код"
	ColRate     = "Курс"
)

// CatalogRow is one priced product line of the catalog.
type CatalogRow struct {
	Currency   string
	Price      float64
	Brand      string
	Model      string
	MarginRate float64

	// Derived by the pricing stage.
	ConvertedPrice float64
	MarginAmount   float64
}

// MarketingRecord is one client touch. Brand and Model are filled in by the tagger.
type MarketingRecord struct {
	ClientID       string
	DeviceCategory string
	Domain         string
	GoalLocation   string
	Conversion     float64
	Brand          string
	Model          string
}

// RateEntry is one row of the central bank rate table, rate text as published.
type RateEntry struct {
	Code string
	Rate string
}

// TouchChain summarises every touch of one client.
type TouchChain struct {
	ClientID       string
	Chain          string
	ConversionSum  float64
	ConversionFlag int
	TouchCount     int
}

// ChainReport holds analytics over the touch chains.
type ChainReport struct {
	TotalClients     int
	ConvertedClients int
	TotalTouches     int
	ConversionRate   float64
	AverageTouches   float64
	TopChains        []ChainCount
	ClientsByTouches map[int]int
}

// ChainCount pairs a chain with the number of clients that followed it.
type ChainCount struct {
	Chain   string
	Clients int
}
