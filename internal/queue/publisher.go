package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/hetulpatel/arbscanner/internal/matches"
)

// MessageWriter is the subset of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// PublishOpportunities writes one message per opportunity, keyed by pair ID,
// and returns how many were sent.
func PublishOpportunities(ctx context.Context, writer MessageWriter, profile string, opps []matches.Opportunity, at time.Time) (int, error) {
	if writer == nil || len(opps) == 0 {
		return 0, nil
	}

	msgs := make([]kafka.Message, 0, len(opps))
	for _, opp := range opps {
		payload, err := json.Marshal(matches.NewPayload(profile, opp, at))
		if err != nil {
			return 0, fmt.Errorf("marshal opportunity %s: %w", opp.ID, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(opp.ID),
			Value: payload,
			Time:  at.UTC(),
		})
	}
	if err := writer.WriteMessages(ctx, msgs...); err != nil {
		return 0, fmt.Errorf("publish opportunities: %w", err)
	}
	return len(msgs), nil
}
