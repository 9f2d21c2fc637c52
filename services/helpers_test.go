package services

import (
	"io"

	"sheet-enricher/models"
	"sheet-enricher/utils"
)

func newTestLogger() *utils.Logger { return utils.NewLoggerTo(io.Discard, "error") }

func catalogSheet() *models.Sheet {
	return models.SheetFromRows(models.SheetCatalog, [][]string{
		{"Марка", "Модель", "Валюта", "Цена", "Маржинальность"},
		{" b mw ", "X5", "$", "10", "0.1"},
		{"bмw", "X6", "₽", "2000", "0.2"},
		{"mercedes", "GLE", "€", "50", "0.5"},
	})
}

func marketingSheet() *models.Sheet {
	return models.SheetFromRows(models.SheetMarketing, [][]string{
		{"Client ID", "Device Category", "Domain", "Goal Completion Location", "Конверсия", "Марка", "Модель"},
		{"2", "mobile", "buy-x5-now.ru", "", "0", "stale", "stale"},
		{"10", "desktop", "mersedes-club.ru", "/gle/order", "1", "", ""},
		{"2", "desktop", "example.ru", "/bmw/x6", "3", "", ""},
		{"C1", "tablet", "news.ru", "/", "", "", ""},
	})
}

func ratesSheet() *models.Sheet {
	return models.SheetFromRows(models.SheetRates, [][]string{
		{"Цифр. код", "Букв. код", "Единиц", "Валюта", "Курс"},
		{"840", "USD", "1", "Доллар США", "90,50"},
		{"978", "EUR", "1", "Евро", "98,10"},
	})
}

func sampleWorkbook() *models.Workbook {
	return models.NewWorkbook(catalogSheet(), marketingSheet(), ratesSheet())
}
