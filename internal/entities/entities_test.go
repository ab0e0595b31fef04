package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hetulpatel/arbscanner/internal/textsim"
)

func TestRegexExtractor(t *testing.T) {
	got := NewRegexExtractor().Extract("Will Apple Inc reach a 15% share by 2025-06 or in 2026?")
	assert.Equal(t, []string{"2025-06", "2026"}, got.Dates)
	assert.Equal(t, []string{"15%", "2025", "06", "2026"}, got.Numbers)
	// sentence-initial "Will" is a known false positive of the naive detector
	assert.Equal(t, []string{"Will Apple Inc"}, got.Companies)
}

func TestRegexExtractorEmpty(t *testing.T) {
	got := NewRegexExtractor().Extract("")
	assert.True(t, got.Empty())

	got = NewRegexExtractor().Extract("no entities here")
	assert.NotNil(t, got.Dates)
	assert.True(t, got.Empty())
}

func TestCompareAveragesOnlySharedCategories(t *testing.T) {
	sim := textsim.NewScorer().Similarity
	a := Entities{Dates: []string{"2024"}, Numbers: []string{"2024", "50%"}}
	b := Entities{Dates: []string{"2024"}, Numbers: []string{"2024"}, Companies: []string{"Tesla"}}

	// dates 1/1, numbers 1/2, companies excluded (missing on a)
	assert.InDelta(t, 0.75, Compare(a, b, sim), 1e-12)
}

func TestCompareCompaniesUseSimilarity(t *testing.T) {
	sim := textsim.NewScorer().Similarity
	a := Entities{Companies: []string{"Donald Trump", "Will"}}
	b := Entities{Companies: []string{"donald trump"}}
	// one of two companies matches, denominator is the larger side
	assert.InDelta(t, 0.5, Compare(a, b, sim), 1e-12)
}

func TestCompareIsSymmetricWithDuplicates(t *testing.T) {
	sim := textsim.NewScorer().Similarity
	a := Entities{Dates: []string{"2024", "2024"}, Numbers: []string{"2024", "2024", "50%"}}
	b := Entities{Dates: []string{"2024"}, Numbers: []string{"2024"}}

	// dates 1/1 once deduped, numbers 1/2
	assert.InDelta(t, 0.75, Compare(a, b, sim), 1e-12)
	assert.InDelta(t, Compare(a, b, sim), Compare(b, a, sim), 1e-12)

	c := Entities{Companies: []string{"Tesla", "Tesla Inc", "SpaceX"}}
	d := Entities{Companies: []string{"Tesla", "SpaceX Corp"}}
	assert.InDelta(t, Compare(c, d, sim), Compare(d, c, sim), 1e-12)
}

func TestCompareNoSharedData(t *testing.T) {
	assert.Equal(t, 0.0, Compare(Entities{}, Entities{Dates: []string{"2024"}}, nil))
	assert.Equal(t, 0.0, Compare(Entities{}, Entities{}, nil))
}
