package pipeline

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// CategoryRule maps a category name to the keywords that imply it. Rule order
// is precedence order: the first matching rule wins.
type CategoryRule struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Rules holds the keyword lists used by the Classifier. The lists are domain
// configuration ported from the upstream feed's heuristics, not derived; they
// can be overridden from a YAML file with LoadRules.
type Rules struct {
	Categories []CategoryRule `yaml:"categories"`
	Positive   []string       `yaml:"positive"`
	Negative   []string       `yaml:"negative"`
}

func DefaultRules() Rules {
	return Rules{
		Categories: []CategoryRule{
			{Name: "Dividend", Keywords: []string{"dividend", "interim dividend", "final dividend", "payout"}},
			{Name: "Financial Results", Keywords: []string{"financial result", "financial results", "earnings", "quarterly result", "unaudited", "audited results", "revenue", "profit"}},
			{Name: "Mergers & Acquisitions", Keywords: []string{"merger", "acquisition", "amalgamation", "takeover", "scheme of arrangement"}},
			{Name: "Board Meeting", Keywords: []string{"board meeting", "board of directors", "director", "management", "kmp"}},
			{Name: "AGM", Keywords: []string{"agm", "annual general meeting", "egm", "extraordinary general meeting"}},
		},
		Positive: []string{
			"growth", "increase", "profit", "gain", "improved", "expansion",
			"surge", "higher", "wins", "awarded", "bonus", "record revenue",
		},
		Negative: []string{
			"decline", "loss", "decrease", "lower", "fall", "penalty",
			"litigation", "default", "risk", "resignation", "shutdown",
		},
	}
}

// LoadRules reads rule overrides from YAML. Sections left empty keep their
// defaults so a file can override only the sentiment lists, say.
func LoadRules(r io.Reader) (Rules, error) {
	var rules Rules
	if err := yaml.NewDecoder(r).Decode(&rules); err != nil {
		return Rules{}, fmt.Errorf("failed to decode rules: %w", err)
	}
	return rules.withDefaults(), nil
}

func (r Rules) withDefaults() Rules {
	defaults := DefaultRules()
	if len(r.Categories) == 0 {
		r.Categories = defaults.Categories
	}
	if len(r.Positive) == 0 {
		r.Positive = defaults.Positive
	}
	if len(r.Negative) == 0 {
		r.Negative = defaults.Negative
	}
	return r
}
