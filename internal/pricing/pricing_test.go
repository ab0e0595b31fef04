package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hetulpatel/arbscanner/internal/models"
)

func assertPair(t *testing.T, wantYes float64, got models.Prices) {
	t.Helper()
	assert.InDelta(t, wantYes, got.Yes, 1e-9)
	assert.InDelta(t, 1-wantYes, got.No, 1e-9)
	assert.InDelta(t, 1.0, got.Yes+got.No, 1e-9)
}

func TestFromOutcomePrices(t *testing.T) {
	cases := []struct {
		name     string
		raw      string
		fallback float64
		wantYes  float64
	}{
		{"strings", `["0.65","0.35"]`, DefaultPrice, 0.65},
		{"numbers", `[0.2, 0.8]`, DefaultPrice, 0.2},
		{"yes only", `["0.4"]`, DefaultPrice, 0.4},
		{"no only usable", `["abc","0.3"]`, DefaultPrice, 0.7},
		{"rescaled", `["0.6","0.6"]`, DefaultPrice, 0.5},
		{"invalid json uses fallback", `not json`, 0.42, 0.42},
		{"empty uses fallback", ``, DefaultPrice, 0.5},
		{"both zero uses fallback", `["0","0"]`, 0.3, 0.3},
		{"out of range ignored", `["1.5","-2"]`, 0.25, 0.25},
		{"nan ignored", `["NaN"]`, DefaultPrice, 0.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assertPair(t, tc.wantYes, FromOutcomePrices(tc.raw, tc.fallback))
		})
	}
}

func TestFromCents(t *testing.T) {
	assertPair(t, 0.70, FromCents(70))
	assertPair(t, 0.55, FromCents(0, 55))
	assertPair(t, 0.5, FromCents())
	assertPair(t, 0.5, FromCents(0, 0))
	assertPair(t, 1.0, FromCents(150))
}

func TestFromProbabilityClamps(t *testing.T) {
	assertPair(t, 0, FromProbability(-0.3))
	assertPair(t, 1, FromProbability(7))
}
