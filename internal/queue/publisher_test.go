package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hetulpatel/arbscanner/internal/matches"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func TestPublishOpportunities(t *testing.T) {
	at := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	opps := []matches.Opportunity{
		{ID: "kalshi:A|polymarket:1", ProfitPotential: 0.05},
		{ID: "kalshi:B|polymarket:2", ProfitPotential: 0.02},
	}
	w := &fakeWriter{}
	n, err := PublishOpportunities(context.Background(), w, "live", opps, at)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, w.msgs, 2)
	assert.Equal(t, "kalshi:A|polymarket:1", string(w.msgs[0].Key))

	var p matches.Payload
	require.NoError(t, json.Unmarshal(w.msgs[1].Value, &p))
	assert.Equal(t, "live", p.Profile)
	assert.Equal(t, 1, p.Version)
	assert.Equal(t, at, p.PublishedAt)
	assert.Equal(t, 0.02, p.Opportunity.ProfitPotential)
}

func TestPublishNothing(t *testing.T) {
	n, err := PublishOpportunities(context.Background(), nil, "live", []matches.Opportunity{{ID: "x"}}, time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)

	w := &fakeWriter{}
	n, err = PublishOpportunities(context.Background(), w, "live", nil, time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, w.msgs)
}

func TestPublishWriterError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	_, err := PublishOpportunities(context.Background(), w, "live", []matches.Opportunity{{ID: "x"}}, time.Now())
	assert.ErrorContains(t, err, "broker down")
}
