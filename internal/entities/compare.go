package entities

// CompanyThreshold is the text similarity above which two company candidates
// are treated as the same name.
const CompanyThreshold = 0.8

// SimilarityFunc scores two strings in [0,1].
type SimilarityFunc func(a, b string) float64

// Compare averages the per-category overlap ratios over the categories that
// have at least one item on both sides. Dates and numbers match exactly;
// companies match when sim scores above CompanyThreshold. When no category
// has data on both sides the score is 0.
func Compare(a, b Entities, sim SimilarityFunc) float64 {
	var ratios []float64
	if r, ok := overlap(a.Dates, b.Dates, exact); ok {
		ratios = append(ratios, r)
	}
	if r, ok := overlap(a.Numbers, b.Numbers, exact); ok {
		ratios = append(ratios, r)
	}
	companyMatch := func(x, y string) bool {
		if sim == nil {
			return x == y
		}
		return sim(x, y) > CompanyThreshold
	}
	if r, ok := overlap(a.Companies, b.Companies, companyMatch); ok {
		ratios = append(ratios, r)
	}
	if len(ratios) == 0 {
		return 0
	}
	total := 0.0
	for _, r := range ratios {
		total += r
	}
	return total / float64(len(ratios))
}

func exact(x, y string) bool { return x == y }

// overlap dedupes both sides, counts the items of each side with a match on
// the other, and divides the smaller count by the larger side. The result
// does not depend on argument order.
func overlap(a, b []string, match func(x, y string) bool) (float64, bool) {
	a, b = unique(a), unique(b)
	if len(a) == 0 || len(b) == 0 {
		return 0, false
	}
	matched := min(matchedIn(a, b, match), matchedIn(b, a, match))
	return float64(matched) / float64(max(len(a), len(b))), true
}

func matchedIn(a, b []string, match func(x, y string) bool) int {
	n := 0
	for _, x := range a {
		for _, y := range b {
			if match(x, y) {
				n++
				break
			}
		}
	}
	return n
}

func unique(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}
