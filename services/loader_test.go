package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"sheet-enricher/models"
)

type fakeReader struct {
	mu     sync.Mutex
	sheets map[string]*models.Sheet
	order  []string
	reads  int
}

func (f *fakeReader) SheetNames() []string { return f.order }

func (f *fakeReader) ReadSheet(name string) (*models.Sheet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	s, ok := f.sheets[name]
	if !ok {
		return nil, errors.New("no such sheet")
	}
	return s.Clone(), nil
}

type fakeRates struct {
	sheet *models.Sheet
	err   error
}

func (f fakeRates) FetchRates(ctx context.Context) (*models.Sheet, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.sheet.Clone(), nil
}

func newFakeReader(sheets ...*models.Sheet) *fakeReader {
	r := &fakeReader{sheets: make(map[string]*models.Sheet)}
	for _, s := range sheets {
		r.sheets[s.Name] = s
		r.order = append(r.order, s.Name)
	}
	return r
}

func TestLoaderMergesSheetsAndRates(t *testing.T) {
	stale := models.SheetFromRows(models.SheetRates, [][]string{{"old"}})
	src := newFakeReader(catalogSheet(), marketingSheet(), stale)
	loader := NewLoader(fakeRates{sheet: ratesSheet()}, newTestLogger(), 2)

	wb, err := loader.Load(context.Background(), src)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := []string{models.SheetCatalog, models.SheetMarketing, models.SheetRates}
	got := wb.Names()
	if len(got) != len(want) {
		t.Fatalf("Names: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names[%d]: got %q, want %q", i, got[i], want[i])
		}
	}
	rates, _ := wb.Sheet(models.SheetRates)
	if rates.ColumnIndex(models.ColRate) < 0 {
		t.Error("fetched rates should replace the stale source sheet")
	}
	if src.reads != 3 {
		t.Errorf("reads: got %d, want 3", src.reads)
	}
}

func TestLoaderRateFailureAbortsRun(t *testing.T) {
	src := newFakeReader(catalogSheet())
	structural := &models.StructureError{Table: models.SheetRates, Reason: "rate table not found on page"}
	loader := NewLoader(fakeRates{err: structural}, newTestLogger(), 2)

	_, err := loader.Load(context.Background(), src)
	if !errors.Is(err, models.ErrStructure) {
		t.Fatalf("expected ErrStructure, got %v", err)
	}
}

func TestLoaderSheetFailure(t *testing.T) {
	src := newFakeReader(catalogSheet())
	src.order = append(src.order, "ghost")
	loader := NewLoader(fakeRates{sheet: ratesSheet()}, newTestLogger(), 1)

	if _, err := loader.Load(context.Background(), src); err == nil {
		t.Fatal("expected error for unreadable sheet")
	}
}
