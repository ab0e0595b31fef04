// Package arb turns matched market pairs and their normalized prices into
// arbitrage opportunities.
package arb

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hetulpatel/arbscanner/internal/logging"
	"github.com/hetulpatel/arbscanner/internal/matches"
	"github.com/hetulpatel/arbscanner/internal/models"
)

const (
	DefaultMinProfitThreshold   = 0.01
	DefaultLowVolumeUSD         = 1000
	DefaultAlignmentSimilarity  = 0.9
	DefaultExpiryWarningDays    = 1
	DefaultConfidenceWindowDays = 7
	DefaultHighRisk             = 0.8
	DefaultMediumRisk           = 0.5

	// kalshiTakerFeeRate is Kalshi's taker fee coefficient: fee per contract
	// is rate * p * (1 - p), rounded up to the cent.
	kalshiTakerFeeRate = 0.07

	epsilon = 1e-9
)

type Config struct {
	// MinProfitThreshold is the price gap a side must exceed to be kept.
	MinProfitThreshold float64
	// LowVolumeUSD flags either side trading less than this in 24h.
	LowVolumeUSD float64
	// AlignmentSimilarity flags pairs scoring below it as possibly misaligned.
	AlignmentSimilarity float64
	ExpiryWarningDays   float64
	// ConfidenceWindowDays is the time to expiry at which confidence stops
	// being discounted.
	ConfidenceWindowDays float64
	HighRisk             float64
	MediumRisk           float64
}

func DefaultConfig() Config {
	return Config{
		MinProfitThreshold:   DefaultMinProfitThreshold,
		LowVolumeUSD:         DefaultLowVolumeUSD,
		AlignmentSimilarity:  DefaultAlignmentSimilarity,
		ExpiryWarningDays:    DefaultExpiryWarningDays,
		ConfidenceWindowDays: DefaultConfidenceWindowDays,
		HighRisk:             DefaultHighRisk,
		MediumRisk:           DefaultMediumRisk,
	}
}

type Analyzer struct {
	cfg Config
}

// NewAnalyzer fills unset (non-positive) fields with defaults. A zero
// MinProfitThreshold is kept; only a negative one is replaced.
func NewAnalyzer(cfg Config) *Analyzer {
	def := DefaultConfig()
	if cfg.MinProfitThreshold < 0 {
		cfg.MinProfitThreshold = def.MinProfitThreshold
	}
	if cfg.LowVolumeUSD <= 0 {
		cfg.LowVolumeUSD = def.LowVolumeUSD
	}
	if cfg.AlignmentSimilarity <= 0 {
		cfg.AlignmentSimilarity = def.AlignmentSimilarity
	}
	if cfg.ExpiryWarningDays <= 0 {
		cfg.ExpiryWarningDays = def.ExpiryWarningDays
	}
	if cfg.ConfidenceWindowDays <= 0 {
		cfg.ConfidenceWindowDays = def.ConfidenceWindowDays
	}
	if cfg.HighRisk <= 0 {
		cfg.HighRisk = def.HighRisk
	}
	if cfg.MediumRisk <= 0 {
		cfg.MediumRisk = def.MediumRisk
	}
	return &Analyzer{cfg: cfg}
}

func (a *Analyzer) Config() Config { return a.cfg }

// Analyze prices one candidate. priceA belongs to c.A and priceB to c.B. It
// returns nil when neither side's gap exceeds the profit threshold.
func (a *Analyzer) Analyze(c *matches.Candidate, priceA, priceB models.Prices, now time.Time) *matches.Opportunity {
	if c == nil {
		return nil
	}
	yesDiff := math.Abs(priceA.Yes - priceB.Yes)
	noDiff := math.Abs(priceA.No - priceB.No)

	// YES wins ties.
	side, diff := matches.OutcomeYes, yesDiff
	pa, pb := priceA.Yes, priceB.Yes
	if noDiff > yesDiff+epsilon {
		side, diff = matches.OutcomeNo, noDiff
		pa, pb = priceA.No, priceB.No
	}
	if diff <= a.cfg.MinProfitThreshold {
		logging.Debugf("[arb] no edge %s yes=%.4f no=%.4f threshold=%.4f", c.Key(), yesDiff, noDiff, a.cfg.MinProfitThreshold)
		return nil
	}

	buy, sell := &c.A, &c.B
	bought, sold := pa, pb
	if pb < pa {
		buy, sell = &c.B, &c.A
		bought, sold = pb, pa
	}
	maxRisk := math.Max(bought, 1-sold)
	risk := a.RiskLevel(maxRisk)
	tte, known := TimeToExpiry(&c.A, &c.B, now)

	window := 1.0
	if known {
		window = math.Min(1, tte/a.cfg.ConfidenceWindowDays)
	}
	confidence := clamp01(c.Similarity * (1 - maxRisk) * window)

	opp := &matches.Opportunity{
		ID:               c.Key(),
		Markets:          []matches.MarketSummary{matches.Summarize(&c.A), matches.Summarize(&c.B)},
		SimilarityScore:  c.Similarity,
		ArbitrageType:    matches.ArbitrageType(side),
		Side:             side,
		Direction:        matches.NewDirection(side, buy.Venue, sell.Venue),
		ProfitPotential:  diff,
		ProfitPercentage: diff * 100,
		RiskLevel:        risk,
		Confidence:       confidence,
		TimeToExpiry:     tte,
		ExpiryKnown:      known,
		Factors:          c.Factors,
		Breakdown:        c.Breakdown,
		Strategy: matches.Strategy{
			Action: fmt.Sprintf("Buy %s on %s at %.2f, sell %s on %s at %.2f",
				side, buy.Venue, bought, side, sell.Venue, sold),
			Platforms: matches.Platforms{Buy: buy.Venue, Sell: sell.Venue},
			Positions: []matches.Leg{
				{Venue: buy.Venue, Side: "buy", Outcome: side, Price: bought},
				{Venue: sell.Venue, Side: "sell", Outcome: side, Price: sold},
			},
			ExpectedProfit: diff,
			MaxRisk:        maxRisk,
		},
	}
	opp.Warnings = a.warnings(c, opp, buy, sell, bought, sold)
	return opp
}

func (a *Analyzer) warnings(c *matches.Candidate, opp *matches.Opportunity, buy, sell *models.Market, bought, sold float64) []string {
	out := []string{}
	if c.Similarity < a.cfg.AlignmentSimilarity {
		out = append(out, fmt.Sprintf("markets may not be perfectly aligned (similarity %.2f)", c.Similarity))
	}
	if !opp.ExpiryKnown {
		out = append(out, "no expiry date on either market")
	} else if opp.TimeToExpiry < a.cfg.ExpiryWarningDays {
		out = append(out, fmt.Sprintf("expires in less than %g day(s)", a.cfg.ExpiryWarningDays))
	}
	for _, m := range []*models.Market{&c.A, &c.B} {
		if m.Volume24h < a.cfg.LowVolumeUSD {
			out = append(out, fmt.Sprintf("low 24h volume on %s ($%.0f), execution may be difficult", m.Venue, m.Volume24h))
		}
	}
	if opp.RiskLevel == matches.RiskHigh {
		out = append(out, fmt.Sprintf("high risk: max single-leg exposure %.2f", opp.Strategy.MaxRisk))
	}
	kalshiPrice := -1.0
	switch {
	case buy.Venue == models.VenueKalshi:
		kalshiPrice = bought
	case sell.Venue == models.VenueKalshi:
		kalshiPrice = sold
	}
	if kalshiPrice >= 0 {
		if fee := KalshiTakerFee(1, kalshiPrice); fee >= opp.ProfitPotential {
			out = append(out, fmt.Sprintf("kalshi taker fee %.2f per contract consumes the %.2f edge", fee, opp.ProfitPotential))
		}
	}
	return out
}

// RiskLevel tiers the worst single-leg exposure.
func (a *Analyzer) RiskLevel(maxRisk float64) matches.RiskLevel {
	return riskLevel(maxRisk, a.cfg.HighRisk, a.cfg.MediumRisk)
}

// RiskLevel tiers maxRisk with the default cut points.
func RiskLevel(maxRisk float64) matches.RiskLevel {
	return riskLevel(maxRisk, DefaultHighRisk, DefaultMediumRisk)
}

func riskLevel(maxRisk, high, medium float64) matches.RiskLevel {
	switch {
	case maxRisk > high:
		return matches.RiskHigh
	case maxRisk > medium:
		return matches.RiskMedium
	default:
		return matches.RiskLow
	}
}

// Confidence is similarity * (1 - maxRisk) * min(1, tte/window).
func Confidence(similarity, maxRisk, timeToExpiryDays, windowDays float64) float64 {
	if windowDays <= 0 {
		windowDays = DefaultConfidenceWindowDays
	}
	return clamp01(similarity * (1 - maxRisk) * math.Min(1, math.Max(0, timeToExpiryDays)/windowDays))
}

// TimeToExpiry returns days until the earliest known end date, clamped at 0.
// known is false when neither market has an end date.
func TimeToExpiry(a, b *models.Market, now time.Time) (days float64, known bool) {
	var end time.Time
	switch {
	case a.HasEndDate() && b.HasEndDate():
		end = a.EndDate
		if b.EndDate.Before(end) {
			end = b.EndDate
		}
	case a.HasEndDate():
		end = a.EndDate
	case b.HasEndDate():
		end = b.EndDate
	default:
		return 0, false
	}
	days = end.Sub(now).Hours() / 24
	if days < 0 {
		days = 0
	}
	return days, true
}

// KalshiTakerFee is the taker fee in dollars for quantity contracts at price,
// rounded up to the next cent.
func KalshiTakerFee(quantity, price float64) float64 {
	p := decimal.NewFromFloat(price)
	fee := decimal.NewFromFloat(kalshiTakerFeeRate).
		Mul(decimal.NewFromFloat(quantity)).
		Mul(p).
		Mul(decimal.NewFromInt(1).Sub(p))
	return fee.RoundUp(2).InexactFloat64()
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
