package textsim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"":                                     "",
		"   ":                                  "",
		"Will Bitcoin reach $100,000 by 2025?": "will bitcoin reach 100 000 by 2025",
		"Fed\t rate--cut!!":                    "fed rate cut",
		"Ünïcode & more":                       "n code more",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), "input %q", in)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Will Trump win the 2024 election?",
		"  Multiple   spaces\n\nand\ttabs ",
		"Ünïcode — dashes… and “quotes”",
		"already normalized text",
		"\v\f odd whitespace",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestTokenizeDropsShortTokens(t *testing.T) {
	assert.Equal(t, []string{"will", "bitcoin", "reach", "100", "000", "2025"},
		Tokenize(Normalize("Will Bitcoin reach $100,000 by 2025?")))
	assert.Empty(t, Tokenize(""))
}

func TestJaccard(t *testing.T) {
	a := TokenSet("apple banana cherry")
	b := TokenSet("banana cherry durian")
	assert.InDelta(t, 2.0/4.0, Jaccard(a, b), 1e-12)
	assert.Equal(t, 0.0, Jaccard(TokenSet(""), TokenSet("")))
}

func TestSimilarityExactMatch(t *testing.T) {
	s := NewScorer()
	q := "Will Trump win the 2024 election?"
	assert.Equal(t, 1.0, s.Similarity(q, q))
	assert.Equal(t, 1.0, s.Similarity(q, "will trump win the 2024 election"))
}

func TestSimilarityBitcoinExample(t *testing.T) {
	s := NewScorer()
	got := s.Similarity("Will Bitcoin reach $100,000 by 2025?", "Will BTC hit $100k before 2026?")
	// only "will" is shared: 1 / 11 tokens, no keyword category on either side
	assert.InDelta(t, 1.0/11.0, got, 1e-12)
	assert.Empty(t, s.SharedCategories("Will Bitcoin reach $100,000 by 2025?", "Will BTC hit $100k before 2026?"))
}

func TestSimilarityKeywordBonus(t *testing.T) {
	s := NewScorer()
	got := s.Similarity("Fed rate cut in March", "Jerome Powell announcement")
	assert.InDelta(t, 0.1, got, 1e-12)
	assert.Equal(t, []string{"fed"}, s.SharedCategories("Fed rate cut in March", "Jerome Powell announcement"))
}

func TestSimilarityBoundsAndSymmetry(t *testing.T) {
	s := NewScorer()
	pairs := [][2]string{
		{"Will Trump win the 2024 presidential election?", "Trump wins 2024 election vote for president"},
		{"Fed rate cut in March", "Jerome Powell announcement"},
		{"", "something"},
		{"NBA championship 2025 Celtics", "Will the Celtics win the NBA championship in 2025?"},
		{"Will inflation exceed 3% and the Fed cut rates before the election?", "CPI above 3% with FOMC rate cut ahead of the presidential vote"},
	}
	for _, p := range pairs {
		ab := s.Similarity(p[0], p[1])
		ba := s.Similarity(p[1], p[0])
		assert.Equal(t, ab, ba, "pair %q", p)
		assert.GreaterOrEqual(t, ab, 0.0)
		assert.LessOrEqual(t, ab, 1.0)
	}
}

func TestSimilarityEmptyInput(t *testing.T) {
	s := NewScorer()
	assert.Equal(t, 0.0, s.Similarity("", ""))
	assert.Equal(t, 0.0, s.Similarity("   ", "   "))
	assert.Equal(t, 0.0, s.Similarity("", "Will it rain?"))
	assert.Equal(t, 0.0, s.Similarity("?!", "Will it rain?"))
}

func TestSimilaritySymbolOnlyText(t *testing.T) {
	s := NewScorer()
	for _, text := range []string{"?!", "$$$", "—"} {
		assert.Equal(t, 1.0, s.Similarity(text, text), "text %q", text)
	}
	// Different raw text, same empty normal form.
	assert.Equal(t, 1.0, s.Similarity("?!", "..."))
}

func TestZeroScorerIsPlainJaccard(t *testing.T) {
	var s Scorer
	got := s.Similarity("Fed rate cut in March", "Jerome Powell announcement")
	require.Equal(t, 0.0, got)
}
