package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hetulpatel/arbscanner/internal/matches"
)

// InsertOpportunity appends one opportunity to the history table.
func (s *Store) InsertOpportunity(ctx context.Context, profile string, opp *matches.Opportunity, recordedAt time.Time) error {
	if s == nil || s.db == nil || opp == nil {
		return fmt.Errorf("sqlite store not initialized or opportunity nil")
	}
	warnings := opp.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	warningsJSON, err := json.Marshal(warnings)
	if err != nil {
		return fmt.Errorf("marshal warnings: %w", err)
	}
	rawJSON, err := json.Marshal(opp)
	if err != nil {
		return fmt.Errorf("marshal opportunity: %w", err)
	}

	var a, b matches.MarketSummary
	if len(opp.Markets) > 0 {
		a = opp.Markets[0]
	}
	if len(opp.Markets) > 1 {
		b = opp.Markets[1]
	}

	query := `
INSERT INTO arb_opportunities (
	pair_id, profile, side, direction, profit_potential, risk_level, confidence,
	similarity, time_to_expiry, expiry_known,
	market_a_venue, market_a_id, market_b_venue, market_b_id,
	warnings_json, opportunity_json, recorded_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`
	_, err = s.db.ExecContext(
		ctx,
		query,
		opp.ID,
		profile,
		string(opp.Side),
		string(opp.Direction),
		opp.ProfitPotential,
		string(opp.RiskLevel),
		opp.Confidence,
		opp.SimilarityScore,
		opp.TimeToExpiry,
		boolInt(opp.ExpiryKnown),
		string(a.Venue),
		a.ID,
		string(b.Venue),
		b.ID,
		string(warningsJSON),
		string(rawJSON),
		formatTime(recordedAt),
	)
	return err
}

// InsertPayload stores a consumed message under its publish time.
func (s *Store) InsertPayload(ctx context.Context, p *matches.Payload) error {
	if p == nil {
		return fmt.Errorf("payload nil")
	}
	at := p.PublishedAt
	if at.IsZero() {
		at = time.Now()
	}
	return s.InsertOpportunity(ctx, p.Profile, &p.Opportunity, at)
}

// StoredOpportunity is one history row.
type StoredOpportunity struct {
	Profile     string
	RecordedAt  time.Time
	Opportunity matches.Opportunity
}

// RecentOpportunities returns the newest rows first. A limit <= 0 means 50.
func (s *Store) RecentOpportunities(ctx context.Context, limit int) ([]StoredOpportunity, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT profile, recorded_at, opportunity_json FROM arb_opportunities
ORDER BY recorded_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoredOpportunity
	for rows.Next() {
		var (
			row           StoredOpportunity
			recorded, raw string
		)
		if err := rows.Scan(&row.Profile, &recorded, &raw); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(raw), &row.Opportunity); err != nil {
			return nil, fmt.Errorf("decode opportunity: %w", err)
		}
		row.RecordedAt = parseTime(recorded)
		out = append(out, row)
	}
	return out, rows.Err()
}
