// Package pricing turns each venue's price representation into one canonical
// YES/NO probability pair. It never fails: malformed input falls back to a
// documented default.
package pricing

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/hetulpatel/arbscanner/internal/models"
)

// DefaultPrice is used for YES when a venue exposes no usable price.
const DefaultPrice = 0.5

const sumTolerance = 1e-9

// FromProbability builds a pair from a YES probability, clamped to [0,1].
func FromProbability(yes float64) models.Prices {
	if math.IsNaN(yes) || math.IsInf(yes, 0) {
		yes = DefaultPrice
	}
	yes = clamp01(yes)
	return models.Prices{Yes: yes, No: 1 - yes}
}

// FromOutcomePrices parses Polymarket's JSON-encoded outcome price array, e.g.
// `["0.65","0.35"]`. Index 0 is YES and index 1 is NO. A pair that does not
// sum to 1 is rescaled; a single usable entry derives the other side. When
// nothing parses the fallback (usually lastTradePrice) is used for YES.
func FromOutcomePrices(raw string, fallback float64) models.Prices {
	yes, yesOK, no, noOK := parseOutcomePrices(raw)
	switch {
	case yesOK && noOK:
		sum := yes + no
		if sum <= 0 {
			return FromProbability(fallback)
		}
		if math.Abs(sum-1) > sumTolerance {
			yes = yes / sum
		}
		return FromProbability(yes)
	case yesOK:
		return FromProbability(yes)
	case noOK:
		return FromProbability(1 - no)
	default:
		return FromProbability(fallback)
	}
}

// FromCents converts Kalshi integer cents (0-100). The first positive
// candidate wins; with none the default price is used.
func FromCents(candidates ...float64) models.Prices {
	for _, c := range candidates {
		if c > 0 && !math.IsInf(c, 0) {
			return FromProbability(c / 100.0)
		}
	}
	return FromProbability(DefaultPrice)
}

func parseOutcomePrices(raw string) (yes float64, yesOK bool, no float64, noOK bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false, 0, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return 0, false, 0, false
	}
	if len(items) > 0 {
		yes, yesOK = parseItem(items[0])
	}
	if len(items) > 1 {
		no, noOK = parseItem(items[1])
	}
	return yes, yesOK, no, noOK
}

func parseItem(item json.RawMessage) (float64, bool) {
	var f float64
	if err := json.Unmarshal(item, &f); err == nil {
		return f, validProbability(f)
	}
	var s string
	if err := json.Unmarshal(item, &s); err != nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, validProbability(f)
}

func validProbability(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0) && f >= 0 && f <= 1
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
