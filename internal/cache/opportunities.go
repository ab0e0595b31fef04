package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hetulpatel/arbscanner/internal/matches"
)

// OpportunityRecord is the last published state of a pair.
type OpportunityRecord struct {
	ProfitPotential float64           `json:"profit_potential"`
	Direction       matches.Direction `json:"direction"`
	RiskLevel       matches.RiskLevel `json:"risk_level"`
	Confidence      float64           `json:"confidence"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

func RecordFor(opp *matches.Opportunity, at time.Time) OpportunityRecord {
	return OpportunityRecord{
		ProfitPotential: opp.ProfitPotential,
		Direction:       opp.Direction,
		RiskLevel:       opp.RiskLevel,
		Confidence:      opp.Confidence,
		UpdatedAt:       at.UTC(),
	}
}

// OpportunityCache stores the last published opportunity per pair so the
// live engine can suppress repeats.
type OpportunityCache interface {
	Get(ctx context.Context, pairID string) (*OpportunityRecord, bool, error)
	Set(ctx context.Context, pairID string, record OpportunityRecord) error
	Close() error
}

type redisOpportunityCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisOpportunityCache keys records by the composite pair ID.
func NewRedisOpportunityCache(client *redis.Client, ttl time.Duration, prefix string) OpportunityCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if prefix == "" {
		prefix = "arb_best"
	}
	return &redisOpportunityCache{client: client, ttl: ttl, prefix: prefix}
}

func (c *redisOpportunityCache) Get(ctx context.Context, pairID string) (*OpportunityRecord, bool, error) {
	if c == nil || c.client == nil {
		return nil, false, nil
	}
	raw, err := c.client.Get(ctx, prefixed(c.prefix, pairID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var record OpportunityRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, false, err
	}
	return &record, true, nil
}

func (c *redisOpportunityCache) Set(ctx context.Context, pairID string, record OpportunityRecord) error {
	if c == nil || c.client == nil {
		return nil
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, prefixed(c.prefix, pairID), payload, c.ttl).Err()
}

func (c *redisOpportunityCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Improved reports whether opp is worth publishing again: nothing was
// recorded, the direction flipped, or profit grew by more than minDelta.
func Improved(prev *OpportunityRecord, opp *matches.Opportunity, minDelta float64) bool {
	if prev == nil {
		return true
	}
	if prev.Direction != opp.Direction {
		return true
	}
	return opp.ProfitPotential > prev.ProfitPotential+minDelta
}

// Filter keeps the opportunities Improved over their cached record. It
// does not write; call Remember once they are delivered. A nil cache keeps
// everything. Cache errors abort the pass.
func Filter(ctx context.Context, c OpportunityCache, opps []matches.Opportunity, minDelta float64) ([]matches.Opportunity, error) {
	if c == nil {
		return opps, nil
	}
	out := make([]matches.Opportunity, 0, len(opps))
	for i := range opps {
		opp := &opps[i]
		prev, _, err := c.Get(ctx, opp.ID)
		if err != nil {
			return nil, err
		}
		if Improved(prev, opp, minDelta) {
			out = append(out, *opp)
		}
	}
	return out, nil
}

// Remember records delivered opportunities as the last published state of
// their pairs. It stops at the first cache error.
func Remember(ctx context.Context, c OpportunityCache, opps []matches.Opportunity, at time.Time) error {
	if c == nil {
		return nil
	}
	for i := range opps {
		if err := c.Set(ctx, opps[i].ID, RecordFor(&opps[i], at)); err != nil {
			return err
		}
	}
	return nil
}
