package services

import (
	"context"
	"errors"
	"testing"

	"sheet-enricher/models"
)

func newTestPipeline(policy MatchPolicy) *Pipeline {
	return NewPipeline(newTestLogger(), PipelineOptions{
		BrandAliases:       map[string][]string{"BMW": {"bmw", "bмw"}},
		DomainReplacements: []Replacement{{From: "Mersedes", To: "Mercedes"}},
		Policy:             policy,
		MaxWorkers:         2,
	})
}

func TestPipelineRun(t *testing.T) {
	wb := sampleWorkbook()
	res, err := newTestPipeline(PolicyLastMatch).Run(context.Background(), wb)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	cat := res.Catalog
	wantBrands := []string{"BMW", "BMW", "Mercedes"}
	wantPrices := []string{"905", "2000", "50"}
	wantMargins := []string{formatNumber(0.1 * 905), "400", "25"}
	for i := range wantBrands {
		if got := cat.Value(i, models.ColBrand); got != wantBrands[i] {
			t.Errorf("catalog row %d brand: got %q, want %q", i, got, wantBrands[i])
		}
		if got := cat.Value(i, models.ColConvertedPrice); got != wantPrices[i] {
			t.Errorf("catalog row %d price: got %q, want %q", i, got, wantPrices[i])
		}
		if got := cat.Value(i, models.ColMarginAmount); got != wantMargins[i] {
			t.Errorf("catalog row %d margin: got %q, want %q", i, got, wantMargins[i])
		}
	}

	mk := res.Marketing
	wantTags := [][2]string{{"", "X5"}, {"Mercedes", "GLE"}, {"BMW", "X6"}, {"", ""}}
	for i, want := range wantTags {
		got := [2]string{mk.Value(i, models.ColBrand), mk.Value(i, models.ColModel)}
		if got != want {
			t.Errorf("marketing row %d tags: got %v, want %v", i, got, want)
		}
	}
	if got := mk.Value(1, models.ColDomain); got != "Mercedes-club.ru" {
		t.Errorf("domain fix: got %q", got)
	}

	if len(res.Chains) != 3 {
		t.Fatalf("chains: got %d, want 3", len(res.Chains))
	}
	first := res.Chains[0]
	if first.ClientID != "2" || first.Chain != "mobile -> desktop" || first.ConversionSum != 3 || first.TouchCount != 2 {
		t.Errorf("unexpected first chain %+v", first)
	}
	if res.TouchChains.Len() != 3 {
		t.Errorf("touch chain sheet rows: got %d", res.TouchChains.Len())
	}

	for _, name := range []string{models.SheetCatalog, models.SheetMarketing, models.SheetTouchChains} {
		if _, ok := wb.Sheet(name); !ok {
			t.Errorf("workbook missing %q after run", name)
		}
	}
	if s, _ := wb.Sheet(models.SheetCatalog); s != res.Catalog {
		t.Error("workbook should hold the enriched catalog")
	}
}

func TestPipelineWithoutUSDRate(t *testing.T) {
	wb := sampleWorkbook()
	// A rate table without USD leaves every price untouched but tagging still runs.
	rates := models.SheetFromRows(models.SheetRates, [][]string{{"Букв. код", "Курс"}, {"EUR", "98,10"}})
	wb.Put(rates)

	res, err := newTestPipeline(PolicyLongestMatch).Run(context.Background(), wb)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := res.Catalog.Value(0, models.ColConvertedPrice); got != "10" {
		t.Errorf("price without USD rate: got %q, want 10", got)
	}
	if got := res.Marketing.Value(2, models.ColModel); got != "X6" {
		t.Errorf("model: got %q, want X6", got)
	}
}

func TestPipelinePricingFailurePublishesNothing(t *testing.T) {
	wb := sampleWorkbook()
	cat, _ := wb.Sheet(models.SheetCatalog)
	cat.Set(0, models.ColPrice, "ten")

	res, err := newTestPipeline(PolicyLastMatch).Run(context.Background(), wb)
	if !errors.Is(err, models.ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
	if res != nil {
		t.Error("result must be nil on failure")
	}
	if _, ok := wb.Sheet(models.SheetTouchChains); ok {
		t.Error("aggregation must not run after a failed task")
	}
	cat, _ = wb.Sheet(models.SheetCatalog)
	if cat.ColumnIndex(models.ColConvertedPrice) >= 0 {
		t.Error("catalog must not be replaced after a failed run")
	}
	mk, _ := wb.Sheet(models.SheetMarketing)
	if mk.Value(2, models.ColModel) != "" {
		t.Error("tagged marketing sheet from the sibling task must not be published")
	}
}

func TestPipelineTaggingFailure(t *testing.T) {
	wb := sampleWorkbook()
	mk, _ := wb.Sheet(models.SheetMarketing)
	mk.Set(0, models.ColConversion, "yes")

	_, err := newTestPipeline(PolicyLastMatch).Run(context.Background(), wb)
	var pe *models.ParseError
	if !errors.As(err, &pe) || pe.Column != models.ColConversion {
		t.Fatalf("expected conversion ParseError, got %v", err)
	}
}

func TestPipelineMissingSheet(t *testing.T) {
	wb := sampleWorkbook()
	wb.Remove(models.SheetRates)
	_, err := newTestPipeline(PolicyLastMatch).Run(context.Background(), wb)
	if !errors.Is(err, models.ErrStructure) {
		t.Fatalf("expected ErrStructure, got %v", err)
	}
}

func TestPipelineBadRateText(t *testing.T) {
	wb := sampleWorkbook()
	rates, _ := wb.Sheet(models.SheetRates)
	rates.Set(1, models.ColRate, "—")
	_, err := newTestPipeline(PolicyLastMatch).Run(context.Background(), wb)
	if !errors.Is(err, models.ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}

func TestPipelineRerunIsStable(t *testing.T) {
	wb := sampleWorkbook()
	p := newTestPipeline(PolicyLastMatch)
	first, err := p.Run(context.Background(), wb)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := p.Run(context.Background(), wb)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	for i := 0; i < first.Marketing.Len(); i++ {
		for _, col := range []string{models.ColBrand, models.ColModel} {
			if first.Marketing.Value(i, col) != second.Marketing.Value(i, col) {
				t.Errorf("row %d %s differs between runs", i, col)
			}
		}
	}
	if len(first.Chains) != len(second.Chains) {
		t.Error("chain count differs between runs")
	}
}
