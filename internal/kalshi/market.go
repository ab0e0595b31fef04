package kalshi

import (
	"strings"
	"time"

	"github.com/hetulpatel/arbscanner/internal/models"
	"github.com/hetulpatel/arbscanner/internal/pricing"
)

// Market is the Trade API market object as far as the scanner reads it.
// Prices are integer cents.
type Market struct {
	Ticker          string           `json:"ticker"`
	Title           string           `json:"title"`
	Subtitle        string           `json:"subtitle"`
	EventTicker     string           `json:"event_ticker"`
	Category        string           `json:"category"`
	DollarVolume    models.FlexFloat `json:"dollar_volume"`
	DollarVolume24h models.FlexFloat `json:"dollar_volume_24h"`
	Volume          models.FlexFloat `json:"volume"`
	Volume24h       models.FlexFloat `json:"volume_24h"`
	Liquidity       models.FlexFloat `json:"liquidity"`
	CloseDate       string           `json:"close_date"`
	CloseTime       string           `json:"close_time"`
	YesAsk          models.FlexFloat `json:"yes_ask"`
	NoAsk           models.FlexFloat `json:"no_ask"`
	LastPrice       models.FlexFloat `json:"last_price"`
	Status          string           `json:"status"`
	CreatedTime     string           `json:"created_time"`
	UpdatedTime     string           `json:"updated_time"`
}

// Prices converts yes_ask, the price a buy fills at, then last_price, from
// cents; 0.5 when neither is set.
func (m *Market) Prices() models.Prices {
	if m == nil {
		return pricing.FromCents()
	}
	return pricing.FromCents(m.YesAsk.Float(0), m.LastPrice.Float(0))
}

// Project maps the raw market onto the platform-neutral shape.
func (m *Market) Project() models.Market {
	if m == nil {
		return models.Market{Venue: models.VenueKalshi, Price: pricing.FromCents()}
	}
	status := strings.ToLower(strings.TrimSpace(m.Status))
	closeAt := parseTime(m.CloseTime)
	if closeAt.IsZero() {
		closeAt = parseTime(m.CloseDate)
	}
	volume := m.DollarVolume.Float(m.Volume.Float(0))
	volume24h := m.DollarVolume24h.Float(m.Volume24h.Float(0))
	return models.Market{
		Venue:       models.VenueKalshi,
		ID:          m.Ticker,
		Question:    strings.TrimSpace(m.Title),
		Description: strings.TrimSpace(m.Subtitle),
		Category:    m.Category,
		Slug:        m.EventTicker,
		EndDate:     closeAt,
		Active:      status == "active" || status == "open",
		Closed:      status == "closed" || status == "settled" || status == "finalized",
		Volume:      volume,
		Volume24h:   volume24h,
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

func parseTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, time.DateOnly} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC()
		}
	}
	return time.Time{}
}
