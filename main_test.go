package main

import (
	"bytes"
	"strings"
	"testing"

	"sheet-enricher/config"
	"sheet-enricher/models"
	"sheet-enricher/utils"
)

func TestWriteSinksWarnsOnMalformedRatesSheet(t *testing.T) {
	var buf bytes.Buffer
	logger := utils.NewLoggerTo(&buf, "info")
	rates := models.SheetFromRows(models.SheetRates, [][]string{{"Валюта"}, {"Доллар США"}})
	chains := []models.TouchChain{{ClientID: "1", Chain: "mobile", TouchCount: 1}}

	got := writeSinks(&config.Config{}, logger, models.NewWorkbook(rates), chains)

	if len(got) != 1 || got[0] != chains[0] {
		t.Errorf("chains should pass through unchanged, got %+v", got)
	}
	if !strings.Contains(buf.String(), "Rates sheet not exported") {
		t.Errorf("expected a warning about the rates sheet, log was:\n%s", buf.String())
	}
}
