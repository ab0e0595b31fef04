package workers

import (
	"context"
	"encoding/json"
	"sync"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/hetulpatel/arbscanner/internal/kafka"
	"github.com/hetulpatel/arbscanner/internal/logging"
	"github.com/hetulpatel/arbscanner/internal/matches"
)

type Handler func(context.Context, *matches.Payload) error

// MessageReader is the subset of *kafka.Reader a worker uses.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafkago.Message, error)
	Close() error
}

// Run starts workerCount consumers in one group and blocks until ctx ends.
func Run(ctx context.Context, brokers []string, topic, group string, workerCount int, handler Handler) {
	if workerCount <= 0 {
		workerCount = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			reader := kafka.NewReader(brokers, topic, group)
			defer reader.Close()
			logging.Debugf("[worker-%d] consuming %s", id, topic)
			Consume(ctx, reader, handler)
		}(i)
	}

	<-ctx.Done()
	wg.Wait()
}

// Consume decodes payloads until ctx ends. Bad messages are logged and skipped.
func Consume(ctx context.Context, reader MessageReader, handler Handler) {
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logging.Errorf("[worker] read error: %v", err)
			continue
		}

		var payload matches.Payload
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			logging.Errorf("[worker] unmarshal error key=%s: %v", string(msg.Key), err)
			continue
		}

		if handler != nil {
			if err := handler(ctx, &payload); err != nil {
				logging.Errorf("[worker] handler error key=%s: %v", string(msg.Key), err)
			}
		}
	}
}
