package textsim

import "strings"

// DefaultKeywordBonus is added once per keyword category both texts hit.
const DefaultKeywordBonus = 0.1

// KeywordCategory is a named list of lowercase keywords matched by substring.
type KeywordCategory struct {
	Name     string
	Keywords []string
}

// DefaultKeywords is the stock category table. Treat it as read-only.
func DefaultKeywords() []KeywordCategory {
	return []KeywordCategory{
		{Name: "fed", Keywords: []string{"fed", "federal reserve", "fomc", "powell", "interest rate", "rate cut", "rate hike", "basis points"}},
		{Name: "election", Keywords: []string{"election", "elected", "electoral", "ballot", "primary", "nominee", "vote", "polls"}},
		{Name: "economy", Keywords: []string{"gdp", "inflation", "recession", "unemployment", "cpi", "economy", "jobs report", "payroll"}},
		{Name: "technology", Keywords: []string{"openai", "chatgpt", "artificial intelligence", "apple", "google", "microsoft", "nvidia", "tesla", "iphone", "tech"}},
		{Name: "politics", Keywords: []string{"president", "congress", "senate", "trump", "biden", "harris", "governor", "supreme court", "white house"}},
		{Name: "sports", Keywords: []string{"nfl", "nba", "mlb", "nhl", "super bowl", "world series", "championship", "playoffs", "world cup", "olympics"}},
		{Name: "entertainment", Keywords: []string{"oscar", "grammy", "emmy", "box office", "movie", "film", "album", "billboard", "netflix"}},
		{Name: "climate", Keywords: []string{"climate", "temperature", "hurricane", "carbon", "emissions", "warming", "el nino"}},
		{Name: "health", Keywords: []string{"covid", "pandemic", "vaccine", "fda", "outbreak", "measles", "bird flu"}},
	}
}

// Scorer computes the bounded text similarity. The zero value has no keyword
// table; use NewScorer for the defaults.
type Scorer struct {
	Keywords []KeywordCategory
	Bonus    float64
}

// NewScorer returns a scorer with the default keyword table and bonus.
func NewScorer() *Scorer {
	return &Scorer{Keywords: DefaultKeywords(), Bonus: DefaultKeywordBonus}
}

// Similarity returns a score in [0,1]: Jaccard token overlap plus a bonus for
// each keyword category present in both texts. Byte-equal normalized texts
// score 1. Texts that normalize to "" score 0.
func (s *Scorer) Similarity(a, b string) float64 {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return 0
	}
	na, nb := Normalize(a), Normalize(b)
	if na == nb {
		return 1.0
	}
	if na == "" || nb == "" {
		return 0
	}
	score := Jaccard(TokenSet(na), TokenSet(nb))
	if s != nil {
		for _, cat := range s.Keywords {
			if containsAny(na, cat.Keywords) && containsAny(nb, cat.Keywords) {
				score += s.Bonus
			}
		}
	}
	return clamp01(score)
}

// SharedCategories lists the keyword categories both texts hit, for reporting.
func (s *Scorer) SharedCategories(a, b string) []string {
	if s == nil {
		return nil
	}
	na, nb := Normalize(a), Normalize(b)
	var out []string
	for _, cat := range s.Keywords {
		if containsAny(na, cat.Keywords) && containsAny(nb, cat.Keywords) {
			out = append(out, cat.Name)
		}
	}
	return out
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
