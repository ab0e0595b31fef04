package report

import (
	"slices"

	"github.com/hetulpatel/arbscanner/internal/matches"
)

// Rank drops opportunities under the profile's profit cut and sorts the rest
// descending by the profile's key. Ties keep input order. The input slice is
// not modified.
func Rank(opps []matches.Opportunity, p Profile) []matches.Opportunity {
	out := make([]matches.Opportunity, 0, len(opps))
	for _, o := range opps {
		if p.MinProfit > 0 && o.ProfitPotential < p.MinProfit {
			continue
		}
		out = append(out, o)
	}
	key := func(o *matches.Opportunity) float64 {
		if p.SortBy == SortByProfit {
			return o.ProfitPotential
		}
		return o.SimilarityScore
	}
	slices.SortStableFunc(out, func(a, b matches.Opportunity) int {
		ka, kb := key(&a), key(&b)
		switch {
		case ka > kb:
			return -1
		case ka < kb:
			return 1
		default:
			return 0
		}
	})
	return out
}

// Buckets groups opportunities by similarity tier.
type Buckets struct {
	Exact  []matches.Opportunity `json:"exact"`
	High   []matches.Opportunity `json:"high"`
	Medium []matches.Opportunity `json:"medium"`
	Low    []matches.Opportunity `json:"low"`
}

// Counts is the per-bucket size.
type Counts struct {
	Exact  int `json:"exact"`
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

func (b Buckets) Counts() Counts {
	return Counts{Exact: len(b.Exact), High: len(b.High), Medium: len(b.Medium), Low: len(b.Low)}
}

func (c Counts) Total() int {
	return c.Exact + c.High + c.Medium + c.Low
}

// Bucket assigns each opportunity to the highest tier whose cut point its
// similarity reaches. Opportunities under the low cut are dropped. Order
// within a bucket follows the input.
func Bucket(opps []matches.Opportunity, t Thresholds) Buckets {
	b := Buckets{
		Exact:  []matches.Opportunity{},
		High:   []matches.Opportunity{},
		Medium: []matches.Opportunity{},
		Low:    []matches.Opportunity{},
	}
	for _, o := range opps {
		switch s := o.SimilarityScore; {
		case s >= t.Exact:
			b.Exact = append(b.Exact, o)
		case s >= t.High:
			b.High = append(b.High, o)
		case s >= t.Medium:
			b.Medium = append(b.Medium, o)
		case s >= t.Low:
			b.Low = append(b.Low, o)
		}
	}
	return b
}
