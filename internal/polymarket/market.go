package polymarket

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/hetulpatel/arbscanner/internal/models"
	"github.com/hetulpatel/arbscanner/internal/pricing"
)

// Market is the Gamma API market object as far as the scanner reads it.
type Market struct {
	ID             string           `json:"id"`
	Question       string           `json:"question"`
	Description    string           `json:"description"`
	Category       string           `json:"category"`
	Tags           []Tag            `json:"tags"`
	Volume         models.FlexFloat `json:"volume"`
	Volume24hr     models.FlexFloat `json:"volume24hr"`
	Liquidity      models.FlexFloat `json:"liquidity"`
	LastTradePrice models.FlexFloat `json:"lastTradePrice"`
	EndDate        string           `json:"endDate"`
	OutcomePrices  string           `json:"outcomePrices"`
	Outcomes       string           `json:"outcomes"`
	Slug           string           `json:"slug"`
	Active         bool             `json:"active"`
	Closed         bool             `json:"closed"`
	CreatedAt      string           `json:"createdAt"`
	UpdatedAt      string           `json:"updatedAt"`
}

type Tag struct {
	ID    string `json:"id,omitempty"`
	Label string `json:"label,omitempty"`
	Slug  string `json:"slug"`
}

// Prices normalizes outcomePrices, falling back to lastTradePrice (or 0.5).
func (m *Market) Prices() models.Prices {
	if m == nil {
		return pricing.FromProbability(pricing.DefaultPrice)
	}
	return pricing.FromOutcomePrices(m.OutcomePrices, m.LastTradePrice.Float(pricing.DefaultPrice))
}

// OutcomeLabels decodes the outcomes array, e.g. ["Yes","No"].
func (m *Market) OutcomeLabels() []string {
	if m == nil || strings.TrimSpace(m.Outcomes) == "" {
		return nil
	}
	var labels []string
	if err := json.Unmarshal([]byte(m.Outcomes), &labels); err != nil {
		return nil
	}
	return labels
}

// Project maps the raw market onto the platform-neutral shape.
func (m *Market) Project() models.Market {
	if m == nil {
		return models.Market{Venue: models.VenuePolymarket, Price: pricing.FromProbability(pricing.DefaultPrice)}
	}
	return models.Market{
		Venue:       models.VenuePolymarket,
		ID:          m.ID,
		Question:    strings.TrimSpace(m.Question),
		Description: strings.TrimSpace(m.Description),
		Category:    m.Category,
		Tags:        m.tagSlugs(),
		Slug:        m.Slug,
		EndDate:     parseTime(m.EndDate),
		Active:      m.Active,
		Closed:      m.Closed,
		Volume:      m.Volume.Float(0),
		Volume24h:   m.Volume24hr.Float(0),
		Liquidity:   m.Liquidity.Float(0),
		Price:       m.Prices(),
	}
}

// ProjectAll projects a raw catalog, preserving order.
func ProjectAll(raw []Market) []models.Market {
	out := make([]models.Market, 0, len(raw))
	for i := range raw {
		out = append(out, raw[i].Project())
	}
	return out
}

func (m *Market) tagSlugs() []string {
	seen := make(map[string]struct{}, len(m.Tags)+1)
	var out []string
	add := func(s string) {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	for _, t := range m.Tags {
		add(t.Slug)
	}
	add(m.Category)
	return out
}

func parseTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", time.DateOnly} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC()
		}
	}
	return time.Time{}
}
