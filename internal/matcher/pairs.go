package matcher

import (
	"iter"
	"math"
	"time"

	"github.com/hetulpatel/arbscanner/internal/categories"
	"github.com/hetulpatel/arbscanner/internal/matches"
	"github.com/hetulpatel/arbscanner/internal/models"
)

// PairSource enumerates the index pairs the scorer should look at. Sources
// only prune; they never change how a pair is scored.
type PairSource interface {
	Pairs(a, b []models.Market) iter.Seq[matches.Pair]
}

// PairFilter is a cheap per-pair gate applied before scoring.
type PairFilter interface {
	Keep(a, b *models.Market) bool
}

// CrossProduct yields every (i, j) pair in row-major order.
type CrossProduct struct{}

func (CrossProduct) Pairs(a, b []models.Market) iter.Seq[matches.Pair] {
	return func(yield func(matches.Pair) bool) {
		for i := range a {
			for j := range b {
				if !yield(matches.Pair{A: i, B: j}) {
					return
				}
			}
		}
	}
}

// Filtered is the cross product restricted to pairs every filter keeps.
func Filtered(filters ...PairFilter) PairSource {
	return filteredSource{filters: filters}
}

type filteredSource struct {
	filters []PairFilter
}

func (f filteredSource) Pairs(a, b []models.Market) iter.Seq[matches.Pair] {
	return func(yield func(matches.Pair) bool) {
		for p := range (CrossProduct{}).Pairs(a, b) {
			keep := true
			for _, flt := range f.filters {
				if !flt.Keep(&a[p.A], &b[p.B]) {
					keep = false
					break
				}
			}
			if keep && !yield(p) {
				return
			}
		}
	}
}

// CategoryBlocker keeps pairs whose categories map onto each other, and pairs
// where either side has no category data to compare.
type CategoryBlocker struct {
	Mapper *categories.Mapper
}

func (c CategoryBlocker) Keep(a, b *models.Market) bool {
	src, dst := orient(a, b)
	if len(src.Tags) == 0 || dst.Category == "" {
		return true
	}
	return c.Mapper.Match(src.Tags, dst.Category)
}

// EndDateBlocker keeps pairs whose end dates are within Window of each other,
// and pairs where either date is missing.
type EndDateBlocker struct {
	Window time.Duration
}

func (e EndDateBlocker) Keep(a, b *models.Market) bool {
	if e.Window <= 0 || !a.HasEndDate() || !b.HasEndDate() {
		return true
	}
	return time.Duration(math.Abs(float64(a.EndDate.Sub(b.EndDate)))) <= e.Window
}
