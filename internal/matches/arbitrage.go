package matches

import (
	"fmt"
	"strings"

	"github.com/hetulpatel/arbscanner/internal/models"
)

// Outcome is the binary side a position is taken on.
type Outcome string

const (
	OutcomeYes Outcome = "YES"
	OutcomeNo  Outcome = "NO"
)

// Direction names the venue to buy on and the venue to sell on, e.g.
// BUY_YES_POLYMARKET_SELL_YES_KALSHI.
type Direction string

const DirectionNone Direction = ""

// NewDirection builds the direction label for buying side on buy and selling it on sell.
func NewDirection(side Outcome, buy, sell models.Venue) Direction {
	return Direction(fmt.Sprintf("BUY_%s_%s_SELL_%s_%s",
		side, strings.ToUpper(string(buy)), side, strings.ToUpper(string(sell))))
}

// RiskLevel is the coarse tier of the worst single-leg exposure.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

type Leg struct {
	Venue   models.Venue `json:"venue"`
	Side    string       `json:"side"`
	Outcome Outcome      `json:"outcome"`
	Price   float64      `json:"price"`
}

type Platforms struct {
	Buy  models.Venue `json:"buy"`
	Sell models.Venue `json:"sell"`
}

// Strategy is the human-facing trade description.
type Strategy struct {
	Action         string    `json:"action"`
	Platforms      Platforms `json:"platforms"`
	Positions      []Leg     `json:"positions"`
	ExpectedProfit float64   `json:"expectedProfit"`
	MaxRisk        float64   `json:"maxRisk"`
}

// MarketSummary is the slimmed market view embedded in an opportunity.
type MarketSummary struct {
	Venue     models.Venue  `json:"venue"`
	ID        string        `json:"id"`
	Question  string        `json:"question"`
	Category  string        `json:"category,omitempty"`
	EndDate   string        `json:"endDate,omitempty"`
	Volume24h float64       `json:"volume24hr"`
	Liquidity float64       `json:"liquidity"`
	Price     models.Prices `json:"price"`
}

// Summarize slims a market for serialization.
func Summarize(m *models.Market) MarketSummary {
	if m == nil {
		return MarketSummary{}
	}
	s := MarketSummary{
		Venue:     m.Venue,
		ID:        m.ID,
		Question:  m.Text(),
		Category:  m.Category,
		Volume24h: m.Volume24h,
		Liquidity: m.Liquidity,
		Price:     m.Price,
	}
	if m.HasEndDate() {
		s.EndDate = m.EndDate.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	return s
}

// Opportunity is one priced-inconsistently matched pair. It is recomputed on
// every pass; ID is the composite pair key and carries no other identity.
type Opportunity struct {
	ID               string          `json:"id"`
	Markets          []MarketSummary `json:"markets"`
	SimilarityScore  float64         `json:"similarityScore"`
	ArbitrageType    string          `json:"arbitrageType"`
	Side             Outcome         `json:"side"`
	Direction        Direction       `json:"direction"`
	ProfitPotential  float64         `json:"profitPotential"`
	ProfitPercentage float64         `json:"profitPercentage"`
	RiskLevel        RiskLevel       `json:"riskLevel"`
	Strategy         Strategy        `json:"strategy"`
	Confidence       float64         `json:"confidence"`
	TimeToExpiry     float64         `json:"timeToExpiry"`
	ExpiryKnown      bool            `json:"expiryKnown"`
	Warnings         []string        `json:"warnings"`
	Factors          []string        `json:"factors,omitempty"`
	Breakdown        Breakdown       `json:"breakdown"`
}

// ArbitrageType labels the price gap for a side.
func ArbitrageType(side Outcome) string {
	return strings.ToLower(string(side)) + "_price_gap"
}
