package models

import (
	"strings"
	"time"
)

// Venue identifies the platform a market belongs to.
type Venue string

const (
	VenuePolymarket Venue = "polymarket"
	VenueKalshi     Venue = "kalshi"
)

// Prices is a YES/NO probability pair in [0,1].
type Prices struct {
	Yes float64 `json:"yes"`
	No  float64 `json:"no"`
}

// Market is the platform-neutral view every venue shape is projected into
// before comparison. A zero EndDate means the venue did not expose one.
type Market struct {
	Venue       Venue     `json:"venue"`
	ID          string    `json:"id"`
	Question    string    `json:"question"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Slug        string    `json:"slug,omitempty"`
	EndDate     time.Time `json:"end_date,omitempty"`
	Active      bool      `json:"active"`
	Closed      bool      `json:"closed"`
	Volume      float64   `json:"volume"`
	Volume24h   float64   `json:"volume_24h"`
	Liquidity   float64   `json:"liquidity"`
	Price       Prices    `json:"price"`
}

// Text returns the display text used for similarity scoring.
func (m *Market) Text() string {
	if m == nil {
		return ""
	}
	if strings.TrimSpace(m.Question) != "" {
		return m.Question
	}
	return m.Description
}

// HasEndDate reports whether the venue exposed an end/close timestamp.
func (m *Market) HasEndDate() bool {
	return m != nil && !m.EndDate.IsZero()
}

// Catalog is the full set of markets fetched from one venue at a point in time.
type Catalog struct {
	Venue      Venue     `json:"venue"`
	Markets    []Market  `json:"markets"`
	CapturedAt time.Time `json:"captured_at"`
}

// NewCatalog stamps a catalog with the capture time.
func NewCatalog(venue Venue, markets []Market, capturedAt time.Time) Catalog {
	return Catalog{
		Venue:      venue,
		Markets:    markets,
		CapturedAt: capturedAt.UTC(),
	}
}

// Tradable keeps markets that are active and not closed.
func (c Catalog) Tradable() []Market {
	out := make([]Market, 0, len(c.Markets))
	for _, m := range c.Markets {
		if m.Closed || !m.Active {
			continue
		}
		out = append(out, m)
	}
	return out
}
