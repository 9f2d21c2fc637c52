package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Rules holds the data-cleaning rules applied before tagging.
type Rules struct {
	// BrandAliases maps a canonical brand spelling to the variants found in the catalog.
	BrandAliases map[string][]string `yaml:"brand_aliases"`
	// DomainReplacements are case-insensitive fixes applied to marketing domains.
	DomainReplacements []Replacement `yaml:"domain_replacements"`
}

type Replacement struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// DefaultRules covers the variants seen in the source workbook, including a
// Cyrillic "м" inside "BMW".
func DefaultRules() *Rules {
	return &Rules{
		BrandAliases: map[string][]string{
			"BMW": {"bmw", "bмw"},
		},
		DomainReplacements: []Replacement{
			{From: "Mersedes", To: "Mercedes"},
		},
	}
}

// LoadRules reads the YAML rules file. A missing file yields DefaultRules.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultRules(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("rules: read %q: %w", path, err)
	}
	return ParseRules(data)
}

// ParseRules decodes YAML rules.
func ParseRules(data []byte) (*Rules, error) {
	var r Rules
	if err := yaml.UnmarshalStrict(data, &r); err != nil {
		return nil, fmt.Errorf("rules: decode: %w", err)
	}
	if r.BrandAliases == nil {
		r.BrandAliases = map[string][]string{}
	}
	for i, rep := range r.DomainReplacements {
		if rep.From == "" {
			return nil, fmt.Errorf("rules: domain replacement %d has empty 'from'", i)
		}
	}
	return &r, nil
}
