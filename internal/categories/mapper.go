// Package categories maps Polymarket tag slugs onto Kalshi categories.
package categories

// Table maps a source tag slug to the target categories it may correspond to.
// Target names are matched case-sensitively against the literal strings.
type Table map[string][]string

// DefaultTable is the stock Polymarket -> Kalshi mapping.
func DefaultTable() Table {
	return Table{
		"business":      {"Economics", "Financials", "Companies"},
		"economy":       {"Economics", "Financials"},
		"fed":           {"Economics", "Financials"},
		"finance":       {"Financials", "Economics"},
		"crypto":        {"Crypto", "Financials"},
		"politics":      {"Politics", "Elections", "World"},
		"elections":     {"Elections", "Politics"},
		"us-politics":   {"Politics", "Elections"},
		"geopolitics":   {"World", "Politics"},
		"world":         {"World"},
		"sports":        {"Sports"},
		"tech":          {"Science and Technology", "Companies"},
		"science":       {"Science and Technology"},
		"ai":            {"Science and Technology", "Companies"},
		"climate":       {"Climate and Weather"},
		"weather":       {"Climate and Weather"},
		"entertainment": {"Entertainment"},
		"culture":       {"Entertainment", "Social"},
		"health":        {"Health"},
	}
}

// Mapper answers whether a source tag set is compatible with a target category.
type Mapper struct {
	table Table
}

// NewMapper copies table so later mutation by the caller has no effect.
func NewMapper(table Table) *Mapper {
	cp := make(Table, len(table))
	for k, v := range table {
		targets := make([]string, len(v))
		copy(targets, v)
		cp[k] = targets
	}
	return &Mapper{table: cp}
}

// Match returns true iff any source tag maps to a list containing target.
// Unknown tags and an empty target never match.
func (m *Mapper) Match(sourceTags []string, target string) bool {
	if m == nil || target == "" {
		return false
	}
	for _, tag := range sourceTags {
		for _, candidate := range m.table[tag] {
			if candidate == target {
				return true
			}
		}
	}
	return false
}

// Targets returns the categories a tag maps to.
func (m *Mapper) Targets(tag string) []string {
	if m == nil {
		return nil
	}
	return m.table[tag]
}
