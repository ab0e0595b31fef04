package main

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sync"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hetulpatel/arbscanner/internal/matches"
	sqlstore "github.com/hetulpatel/arbscanner/internal/storage/sqlite"
	"github.com/hetulpatel/arbscanner/internal/workers"
)

type drainReader struct {
	mu     sync.Mutex
	msgs   []kafkago.Message
	cancel context.CancelFunc
}

func (d *drainReader) ReadMessage(ctx context.Context) (kafkago.Message, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.msgs) == 0 {
		d.cancel()
		return kafkago.Message{}, ctx.Err()
	}
	msg := d.msgs[0]
	d.msgs = d.msgs[1:]
	return msg, nil
}

func (d *drainReader) Close() error { return nil }

func TestSinkStoresConsumedOpportunities(t *testing.T) {
	store, err := sqlstore.Open(filepath.Join(t.TempDir(), "sink.db"))
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.CreateTables(context.Background()))

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	opp := matches.Opportunity{
		ID:              "kalshi:PRES-24|polymarket:pm-1",
		Side:            matches.OutcomeYes,
		ProfitPotential: 0.05,
		Markets: []matches.MarketSummary{
			{Venue: "polymarket", ID: "pm-1"},
			{Venue: "kalshi", ID: "PRES-24"},
		},
	}
	value, err := json.Marshal(matches.NewPayload("live", opp, at))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reader := &drainReader{
		msgs: []kafkago.Message{
			{Key: []byte(opp.ID), Value: value},
			{Key: []byte("junk"), Value: []byte("{not json")},
		},
		cancel: cancel,
	}
	workers.Consume(ctx, reader, storeHandler(store))

	recent, err := store.RecentOpportunities(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "live", recent[0].Profile)
	assert.Equal(t, opp.ID, recent[0].Opportunity.ID)
	assert.True(t, recent[0].RecordedAt.Equal(at))
}
