package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"sheet-enricher/models"
	"sheet-enricher/utils"
)

// MatchPolicy decides which dictionary entry wins when several match one record.
type MatchPolicy string

const (
	// PolicyLastMatch keeps the last matching entry in dictionary order.
	PolicyLastMatch MatchPolicy = "last"
	// PolicyLongestMatch keeps the longest matching string; ties go to the later entry.
	PolicyLongestMatch MatchPolicy = "longest"
)

// ParseMatchPolicy accepts "last" or "longest"; blank means last.
func ParseMatchPolicy(s string) (MatchPolicy, error) {
	switch MatchPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyLastMatch:
		return PolicyLastMatch, nil
	case PolicyLongestMatch:
		return PolicyLongestMatch, nil
	}
	return "", fmt.Errorf("unknown match policy %q", s)
}

// DictEntry links a model name to its brand.
type DictEntry struct {
	Model string
	Brand string
}

// Dictionary is an ordered, read-only model -> brand mapping.
type Dictionary struct {
	entries []DictEntry
}

// NewDictionary keeps entries in the order given. A repeated model keeps its first
// position and takes the later brand.
func NewDictionary(entries ...DictEntry) *Dictionary {
	d := &Dictionary{}
	pos := make(map[string]int, len(entries))
	for _, e := range entries {
		if i, ok := pos[e.Model]; ok {
			d.entries[i].Brand = e.Brand
			continue
		}
		pos[e.Model] = len(d.entries)
		d.entries = append(d.entries, e)
	}
	return d
}

// BuildDictionary derives the dictionary from the catalog sheet's model and brand columns.
func BuildDictionary(catalog *models.Sheet) (*Dictionary, error) {
	if !catalog.HasColumns(models.ColModel, models.ColBrand) {
		return nil, &models.StructureError{Table: catalog.Name, Reason: "missing model or brand column"}
	}
	entries := make([]DictEntry, 0, catalog.Len())
	for i := 0; i < catalog.Len(); i++ {
		entries = append(entries, DictEntry{
			Model: catalog.Value(i, models.ColModel),
			Brand: catalog.Value(i, models.ColBrand),
		})
	}
	return NewDictionary(entries...), nil
}

// Entries returns a copy of the entries in order.
func (d *Dictionary) Entries() []DictEntry {
	return append([]DictEntry(nil), d.entries...)
}

func (d *Dictionary) Len() int {
	return len(d.entries)
}

type loweredEntry struct {
	DictEntry
	model string
	brand string
}

// Tagger assigns brand and model labels to marketing records by substring match
// against Domain and Goal Completion Location.
type Tagger struct {
	entries []loweredEntry
	policy  MatchPolicy
	logger  *utils.Logger
}

func NewTagger(dict *Dictionary, policy MatchPolicy, logger *utils.Logger) *Tagger {
	t := &Tagger{policy: policy, logger: logger}
	for _, e := range dict.entries {
		if e.Model == "" {
			continue
		}
		t.entries = append(t.entries, loweredEntry{
			DictEntry: e,
			model:     strings.ToLower(e.Model),
			brand:     strings.ToLower(e.Brand),
		})
	}
	return t
}

// Tag labels every record and returns how many received at least one label.
func (t *Tagger) Tag(records []*models.MarketingRecord) int {
	tagged := 0
	for _, r := range records {
		if t.TagRecord(r) {
			tagged++
		}
	}
	t.logger.Info("[tagger] Tagged %d of %d records against %d dictionary entries",
		tagged, len(records), len(t.entries))
	return tagged
}

// TagRecord labels one record. Fields that match nothing keep their current value.
func (t *Tagger) TagRecord(r *models.MarketingRecord) bool {
	domain := strings.ToLower(r.Domain)
	goal := strings.ToLower(r.GoalLocation)
	matches := func(needle string) bool {
		return strings.Contains(domain, needle) || strings.Contains(goal, needle)
	}

	var model, brand string
	modelLen, brandLen := -1, -1
	for _, e := range t.entries {
		if matches(e.model) {
			if n := utf8.RuneCountInString(e.Model); t.wins(n, modelLen) {
				model, modelLen = e.Model, n
			}
		}
		if e.brand != "" && matches(e.brand) {
			if n := utf8.RuneCountInString(e.Brand); t.wins(n, brandLen) {
				brand, brandLen = e.Brand, n
			}
		}
	}

	if modelLen >= 0 {
		r.Model = model
	}
	if brandLen >= 0 {
		r.Brand = brand
	}
	return modelLen >= 0 || brandLen >= 0
}

func (t *Tagger) wins(candidate, current int) bool {
	if t.policy == PolicyLongestMatch {
		return candidate >= current
	}
	return true
}
