package services

import (
	"testing"

	"sheet-enricher/models"
)

func TestBrandNormalizer(t *testing.T) {
	n := NewBrandNormalizer(map[string][]string{"BMW": {"bmw", "bмw"}})

	tests := []struct {
		raw  string
		want string
	}{
		{"bmw", "BMW"},
		{" B M W ", "BMW"},
		{"bмw", "BMW"},
		{"BМW", "BMW"},
		{"mercedes", "Mercedes"},
		{"LAND rover", "Landrover"},
		{"лада", "Лада"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := n.Normalize(tt.raw); got != tt.want {
			t.Errorf("Normalize(%q) = %q; want %q", tt.raw, got, tt.want)
		}
	}
}

func TestDomainFixer(t *testing.T) {
	f := NewDomainFixer([]Replacement{{From: "Mersedes", To: "Mercedes"}, {From: "", To: "x"}})
	if got := f.Fix("MERSEDES-club.ru/mersedes"); got != "Mercedes-club.ru/Mercedes" {
		t.Errorf("Fix: got %q", got)
	}
}

func TestNewDictionaryKeepsFirstPositionLastBrand(t *testing.T) {
	d := NewDictionary(
		DictEntry{Model: "X5", Brand: "Bmw"},
		DictEntry{Model: "GLE", Brand: "Mercedes"},
		DictEntry{Model: "X5", Brand: "BMW"},
	)
	got := d.Entries()
	want := []DictEntry{{Model: "X5", Brand: "BMW"}, {Model: "GLE", Brand: "Mercedes"}}
	if len(got) != len(want) {
		t.Fatalf("entries: got %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestTaggerTagsMatchingBrand(t *testing.T) {
	tagger := NewTagger(NewDictionary(DictEntry{Model: "X5", Brand: "BMW"}), PolicyLastMatch, newTestLogger())
	r := &models.MarketingRecord{Domain: "buy-x5-now"}
	tagger.Tag([]*models.MarketingRecord{r})
	if r.Model != "X5" {
		t.Errorf("Model: got %q, want X5", r.Model)
	}
	// "bmw" does not occur in the domain, so the brand stays empty.
	if r.Brand != "" {
		t.Errorf("Brand: got %q, want empty", r.Brand)
	}

	r2 := &models.MarketingRecord{Domain: "bmw-dealer", GoalLocation: "/catalog/X5"}
	tagger.TagRecord(r2)
	if r2.Model != "X5" || r2.Brand != "BMW" {
		t.Errorf("got brand %q model %q, want BMW X5", r2.Brand, r2.Model)
	}
}

func TestTaggerFieldsAreIndependent(t *testing.T) {
	tagger := NewTagger(NewDictionary(DictEntry{Model: "GLE", Brand: "Mercedes"}), PolicyLastMatch, newTestLogger())
	r := &models.MarketingRecord{Domain: "mercedes-club.ru", GoalLocation: "/"}
	tagger.TagRecord(r)
	if r.Brand != "Mercedes" || r.Model != "" {
		t.Errorf("got brand %q model %q", r.Brand, r.Model)
	}
}

func TestTaggerSkipsEmptyModel(t *testing.T) {
	tagger := NewTagger(NewDictionary(DictEntry{Model: "", Brand: "BMW"}), PolicyLastMatch, newTestLogger())
	r := &models.MarketingRecord{Domain: "bmw.ru"}
	if tagger.TagRecord(r) {
		t.Error("entry with empty model should be skipped")
	}
	if r.Brand != "" || r.Model != "" {
		t.Errorf("unexpected tags %q %q", r.Brand, r.Model)
	}
}

func TestTaggerLastMatchWins(t *testing.T) {
	dict := NewDictionary(
		DictEntry{Model: "X5 M", Brand: "BMW"},
		DictEntry{Model: "X5", Brand: "BMW"},
	)
	r := &models.MarketingRecord{Domain: "x5 m competition"}
	NewTagger(dict, PolicyLastMatch, newTestLogger()).TagRecord(r)
	if r.Model != "X5" {
		t.Errorf("last match: got %q, want X5", r.Model)
	}
}

func TestTaggerLongestMatchWins(t *testing.T) {
	dict := NewDictionary(
		DictEntry{Model: "X5 M", Brand: "BMW"},
		DictEntry{Model: "X5", Brand: "BMW"},
	)
	r := &models.MarketingRecord{Domain: "x5 m competition"}
	NewTagger(dict, PolicyLongestMatch, newTestLogger()).TagRecord(r)
	if r.Model != "X5 M" {
		t.Errorf("longest match: got %q, want X5 M", r.Model)
	}

	// Equal lengths fall back to dictionary order.
	dict = NewDictionary(DictEntry{Model: "A4", Brand: "Audi"}, DictEntry{Model: "A6", Brand: "Audi"})
	r = &models.MarketingRecord{Domain: "a4-vs-a6"}
	NewTagger(dict, PolicyLongestMatch, newTestLogger()).TagRecord(r)
	if r.Model != "A6" {
		t.Errorf("tie: got %q, want A6", r.Model)
	}
}

func TestTaggerIdempotent(t *testing.T) {
	dict := NewDictionary(
		DictEntry{Model: "X5", Brand: "BMW"},
		DictEntry{Model: "GLE", Brand: "Mercedes"},
	)
	records := []*models.MarketingRecord{
		{Domain: "bmw-x5.ru"},
		{Domain: "mercedes.ru", GoalLocation: "/gle"},
		{Domain: "nothing.ru"},
	}
	for _, policy := range []MatchPolicy{PolicyLastMatch, PolicyLongestMatch} {
		tagger := NewTagger(dict, policy, newTestLogger())
		tagger.Tag(records)
		first := snapshotTags(records)
		tagger.Tag(records)
		second := snapshotTags(records)
		for i := range first {
			if first[i] != second[i] {
				t.Errorf("%s: record %d changed on re-tag: %v -> %v", policy, i, first[i], second[i])
			}
		}
	}
}

func snapshotTags(records []*models.MarketingRecord) [][2]string {
	out := make([][2]string, len(records))
	for i, r := range records {
		out[i] = [2]string{r.Brand, r.Model}
	}
	return out
}

func TestParseMatchPolicy(t *testing.T) {
	for in, want := range map[string]MatchPolicy{"": PolicyLastMatch, "LAST": PolicyLastMatch, " longest ": PolicyLongestMatch} {
		got, err := ParseMatchPolicy(in)
		if err != nil || got != want {
			t.Errorf("ParseMatchPolicy(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseMatchPolicy("first"); err == nil {
		t.Error("expected error for unknown policy")
	}
}
