package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hetulpatel/arbscanner/internal/config"
	"github.com/hetulpatel/arbscanner/internal/kafka"
	"github.com/hetulpatel/arbscanner/internal/logging"
	"github.com/hetulpatel/arbscanner/internal/matches"
	sqlstore "github.com/hetulpatel/arbscanner/internal/storage/sqlite"
	"github.com/hetulpatel/arbscanner/internal/workers"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logging.InitFromEnv()

	cfg, err := config.Load(os.Getenv("ARB_CONFIG"))
	if err != nil {
		logging.Fatalf("[arb-sink] load config: %v", err)
	}
	logging.SetLevel(logging.ParseLevel(cfg.LogLevel))

	brokers := cfg.Kafka.Brokers
	topic := cfg.Kafka.OpportunityTopic

	waitCtx, cancel := context.WithTimeout(ctx, 45*time.Second)
	if err := kafka.WaitForBroker(waitCtx, brokers); err != nil {
		logging.Fatalf("[arb-sink] wait for broker: %v", err)
	}
	cancel()

	ensureCtx, cancelEnsure := context.WithTimeout(ctx, 30*time.Second)
	if err := kafka.EnsureTopic(ensureCtx, brokers, topic, 0); err != nil {
		logging.Errorf("[arb-sink] ensure topic warning: %v", err)
	}
	cancelEnsure()

	store, err := sqlstore.Open(cfg.SQLite.Path)
	if err != nil {
		logging.Fatalf("[arb-sink] open sqlite: %v", err)
	}
	defer store.Close()
	if err := store.CreateTables(ctx); err != nil {
		logging.Fatalf("[arb-sink] create tables: %v", err)
	}

	logging.Infof("[arb-sink] consuming %s with group %s (%d workers)", topic, cfg.Kafka.Group, cfg.Kafka.Workers)
	workers.Run(ctx, brokers, topic, cfg.Kafka.Group, cfg.Kafka.Workers, storeHandler(store))
}

func storeHandler(store *sqlstore.Store) workers.Handler {
	return func(ctx context.Context, p *matches.Payload) error {
		if err := store.InsertPayload(ctx, p); err != nil {
			return err
		}
		logging.Debugf("[arb-sink] stored %s (%s, profit=%.4f)", p.Opportunity.ID, p.Profile, p.Opportunity.ProfitPotential)
		return nil
	}
}
