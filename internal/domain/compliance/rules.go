// Package compliance holds the local-content rule table and the per-item evaluator.
package compliance

import "sort"

// Category keys
const (
	CategoryHealthEquipment       = "alat_kesehatan"
	CategoryAgriculturalMachinery = "alat_mesin_pertanian"
	CategoryElectronicsTelematics = "elektronik"
	CategoryGeneralProducts       = "umum"
)

// Rule is the threshold set for one industry category
type Rule struct {
	Category                string  `json:"category"`
	Name                    string  `json:"name"`
	MinLocalContentPercent  float64 `json:"min_local_content_percent"`
	MinDomesticValuePercent float64 `json:"min_domestic_value_percent"`
	MinTotalPercent         float64 `json:"min_total_percent"`
	Citation                string  `json:"citation"`
}

// RuleTable maps category keys to rules. It is read-only after construction.
type RuleTable struct {
	rules map[string]Rule
}

// NewRuleTable builds a table from the given rules; later duplicates win
func NewRuleTable(rules ...Rule) *RuleTable {
	t := &RuleTable{rules: make(map[string]Rule, len(rules))}
	for _, r := range rules {
		t.rules[r.Category] = r
	}
	return t
}

// DefaultRuleTable returns the thresholds prior submissions were evaluated against.
// Changing a value here does not alter stored submissions.
func DefaultRuleTable() *RuleTable {
	return NewRuleTable(
		Rule{
			Category:                CategoryHealthEquipment,
			Name:                    "Health Equipment",
			MinLocalContentPercent:  60,
			MinDomesticValuePercent: 40,
			MinTotalPercent:         40,
			Citation:                "Permenperin No. 31 Tahun 2022 (alat kesehatan)",
		},
		Rule{
			Category:                CategoryAgriculturalMachinery,
			Name:                    "Agricultural Machinery",
			MinLocalContentPercent:  43,
			MinDomesticValuePercent: 40,
			MinTotalPercent:         40,
			Citation:                "Permenperin No. 46 Tahun 2022 (alat dan mesin pertanian)",
		},
		Rule{
			Category:                CategoryElectronicsTelematics,
			Name:                    "Electronics & Telematics",
			MinLocalContentPercent:  25,
			MinDomesticValuePercent: 40,
			MinTotalPercent:         40,
			Citation:                "Permenperin No. 22 Tahun 2020 (elektronika dan telematika)",
		},
		Rule{
			Category:                CategoryGeneralProducts,
			Name:                    "General Products",
			MinLocalContentPercent:  25,
			MinDomesticValuePercent: 40,
			MinTotalPercent:         40,
			Citation:                "Perpres No. 16 Tahun 2018 jo. Perpres No. 12 Tahun 2021",
		},
	)
}

// Lookup returns the rule for a category
func (t *RuleTable) Lookup(category string) (Rule, bool) {
	r, ok := t.rules[category]
	return r, ok
}

// Rules returns all rules ordered by category key
func (t *RuleTable) Rules() []Rule {
	out := make([]Rule, 0, len(t.rules))
	for _, r := range t.rules {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Category < out[j].Category
	})
	return out
}
