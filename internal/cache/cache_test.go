package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hetulpatel/arbscanner/internal/entities"
	"github.com/hetulpatel/arbscanner/internal/matches"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewRedisClient(mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestNewRedisClientRequiresAddr(t *testing.T) {
	_, err := NewRedisClient("", "", 0)
	assert.Error(t, err)

	_, client := setupTestRedis(t)
	assert.NoError(t, Ping(context.Background(), client))
}

func TestOpportunityCacheRoundTrip(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()
	c := NewRedisOpportunityCache(client, time.Hour, "")

	_, ok, err := c.Get(ctx, "kalshi:A|polymarket:1")
	require.NoError(t, err)
	assert.False(t, ok)

	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rec := OpportunityRecord{ProfitPotential: 0.05, Direction: "BUY_YES_POLYMARKET_SELL_YES_KALSHI", RiskLevel: matches.RiskMedium, Confidence: 0.3, UpdatedAt: at}
	require.NoError(t, c.Set(ctx, "kalshi:A|polymarket:1", rec))

	got, ok, err := c.Get(ctx, "kalshi:A|polymarket:1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, rec, *got)

	assert.True(t, mr.Exists("arb_best:kalshi:A|polymarket:1"))
	assert.Equal(t, time.Hour, mr.TTL("arb_best:kalshi:A|polymarket:1"))
}

func TestImproved(t *testing.T) {
	opp := &matches.Opportunity{ProfitPotential: 0.05, Direction: "BUY_YES_POLYMARKET_SELL_YES_KALSHI"}
	assert.True(t, Improved(nil, opp, 0.005))

	prev := RecordFor(opp, time.Now())
	assert.False(t, Improved(&prev, opp, 0.005))

	better := *opp
	better.ProfitPotential = 0.06
	assert.True(t, Improved(&prev, &better, 0.005))

	flipped := *opp
	flipped.Direction = "BUY_YES_KALSHI_SELL_YES_POLYMARKET"
	assert.True(t, Improved(&prev, &flipped, 0.005))
}

func TestFilterAndRemember(t *testing.T) {
	_, client := setupTestRedis(t)
	ctx := context.Background()
	c := NewRedisOpportunityCache(client, 0, "test")
	at := time.Now()

	opps := []matches.Opportunity{
		{ID: "a", ProfitPotential: 0.05, Direction: "D1"},
		{ID: "b", ProfitPotential: 0.02, Direction: "D1"},
	}
	first, err := Filter(ctx, c, opps, 0.005)
	require.NoError(t, err)
	assert.Len(t, first, 2)

	// Nothing remembered yet: still new.
	again, err := Filter(ctx, c, opps, 0.005)
	require.NoError(t, err)
	assert.Len(t, again, 2)

	require.NoError(t, Remember(ctx, c, first, at))

	opps[0].ProfitPotential = 0.051
	opps[1].ProfitPotential = 0.04
	second, err := Filter(ctx, c, opps, 0.005)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "b", second[0].ID)

	all, err := Filter(ctx, nil, opps, 0.005)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.NoError(t, Remember(ctx, nil, opps, at))
}

func TestFilterSurfacesRedisErrors(t *testing.T) {
	mr, client := setupTestRedis(t)
	c := NewRedisOpportunityCache(client, 0, "")
	mr.Close()
	_, err := Filter(context.Background(), c, []matches.Opportunity{{ID: "a"}}, 0)
	assert.Error(t, err)
	assert.Error(t, Remember(context.Background(), c, []matches.Opportunity{{ID: "a"}}, time.Now()))
}

func TestEmbeddingCache(t *testing.T) {
	_, client := setupTestRedis(t)
	ctx := context.Background()
	c := NewRedisEmbeddingCache(client, 0, "")

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "k", []float32{0.25, -1, 3}))
	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []float32{0.25, -1, 3}, got)
}

func TestEntityCache(t *testing.T) {
	_, client := setupTestRedis(t)
	ctx := context.Background()
	c := NewRedisEntityCache(client, 0, "")

	want := entities.Entities{Dates: []string{"2025"}, Numbers: []string{"2025"}, Companies: []string{"Federal Reserve"}}
	require.NoError(t, c.Set(ctx, "h", want))
	got, ok, err := c.Get(ctx, "h")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)

	var nilCache *redisEntityCache
	_, ok, err = nilCache.Get(ctx, "h")
	assert.NoError(t, err)
	assert.False(t, ok)
}
