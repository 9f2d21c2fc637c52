package services

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"sheet-enricher/models"
)

// BrandNormalizer collapses spelling variants of a brand to one canonical form.
type BrandNormalizer struct {
	// cleaned variant -> canonical spelling
	aliases map[string]string
}

// NewBrandNormalizer builds a normalizer from canonical -> variants rules.
// The canonical spelling is always an alias of itself.
func NewBrandNormalizer(rules map[string][]string) *BrandNormalizer {
	n := &BrandNormalizer{aliases: make(map[string]string)}
	for canonical, variants := range rules {
		n.aliases[cleanBrand(canonical)] = canonical
		for _, v := range variants {
			n.aliases[cleanBrand(v)] = canonical
		}
	}
	return n
}

// Normalize strips spaces and lowercases the brand. A known variant maps to its canonical
// spelling; anything else is capitalised.
func (n *BrandNormalizer) Normalize(brand string) string {
	cleaned := cleanBrand(brand)
	if canonical, ok := n.aliases[cleaned]; ok {
		return canonical
	}
	return capitalize(cleaned)
}

// NormalizeSheet rewrites the brand column of the catalog sheet in place.
func (n *BrandNormalizer) NormalizeSheet(s *models.Sheet) {
	idx := s.ColumnIndex(models.ColBrand)
	if idx < 0 {
		return
	}
	for _, row := range s.Rows {
		row[idx] = n.Normalize(row[idx])
	}
}

func cleanBrand(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// Replacement is a case-insensitive text fix.
type Replacement struct {
	From string
	To   string
}

// DomainFixer applies spelling fixes to the marketing Domain column.
type DomainFixer struct {
	patterns []*regexp.Regexp
	targets  []string
}

func NewDomainFixer(replacements []Replacement) *DomainFixer {
	f := &DomainFixer{}
	for _, r := range replacements {
		if r.From == "" {
			continue
		}
		f.patterns = append(f.patterns, regexp.MustCompile("(?i)"+regexp.QuoteMeta(r.From)))
		f.targets = append(f.targets, r.To)
	}
	return f
}

// Fix applies every replacement in order.
func (f *DomainFixer) Fix(s string) string {
	for i, p := range f.patterns {
		s = p.ReplaceAllLiteralString(s, f.targets[i])
	}
	return s
}

// FixSheet rewrites the Domain column of the marketing sheet in place.
func (f *DomainFixer) FixSheet(s *models.Sheet) {
	idx := s.ColumnIndex(models.ColDomain)
	if idx < 0 || len(f.patterns) == 0 {
		return
	}
	for _, row := range s.Rows {
		row[idx] = f.Fix(row[idx])
	}
}
