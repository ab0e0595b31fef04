package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/hetulpatel/arbscanner/internal/cache"
	"github.com/hetulpatel/arbscanner/internal/collectors"
	"github.com/hetulpatel/arbscanner/internal/config"
	"github.com/hetulpatel/arbscanner/internal/kafka"
	"github.com/hetulpatel/arbscanner/internal/kalshi"
	"github.com/hetulpatel/arbscanner/internal/logging"
	"github.com/hetulpatel/arbscanner/internal/models"
	"github.com/hetulpatel/arbscanner/internal/polymarket"
	"github.com/hetulpatel/arbscanner/internal/queue"
	"github.com/hetulpatel/arbscanner/internal/scanner"
	sqlstore "github.com/hetulpatel/arbscanner/internal/storage/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logging.InitFromEnv()

	cfg, err := config.Load(os.Getenv("ARB_CONFIG"))
	if err != nil {
		logging.Fatalf("[arb-engine] load config: %v", err)
	}
	logging.SetLevel(logging.ParseLevel(cfg.LogLevel))
	if err := cfg.Validate(); err != nil {
		logging.Fatalf("[arb-engine] %v", err)
	}
	profile, err := cfg.Profile(cfg.Engine.Profile)
	if err != nil {
		logging.Fatalf("[arb-engine] %v", err)
	}

	store, err := sqlstore.Open(cfg.SQLite.Path)
	if err != nil {
		logging.Fatalf("[arb-engine] open sqlite: %v", err)
	}
	defer store.Close()
	if err := store.CreateTables(ctx); err != nil {
		logging.Fatalf("[arb-engine] create tables: %v", err)
	}

	rdb := setupRedis(ctx, cfg)
	var opportunities cache.OpportunityCache
	if rdb != nil {
		opportunities = cache.NewRedisOpportunityCache(rdb, cfg.Redis.TTL.Duration, "")
		defer opportunities.Close()
	}

	var writer queue.MessageWriter
	if cfg.Kafka.Enabled {
		if w := setupWriter(ctx, cfg.Kafka.Brokers, cfg.Kafka.OpportunityTopic); w != nil {
			defer w.Close()
			writer = w
		}
	}

	s, err := scanner.New(scanner.Options{Config: cfg, Profile: profile, Redis: rdb})
	if err != nil {
		logging.Fatalf("[arb-engine] build scanner: %v", err)
	}
	e := &engine{
		scanner:  s,
		store:    store,
		cache:    opportunities,
		writer:   writer,
		minDelta: cfg.Engine.MinDelta,
		out:      os.Stdout,
		now:      time.Now,
	}

	sources := []collectors.Source{
		{Venue: models.VenuePolymarket, Collector: polymarket.NewClient(cfg.PolymarketClient()), Options: cfg.Polymarket.FetchOptions()},
		{Venue: models.VenueKalshi, Collector: kalshi.NewClient(cfg.KalshiClient()), Options: cfg.Kalshi.FetchOptions()},
	}
	logging.Infof("[arb-engine] polling every %s with profile %s (strategy=%s)", cfg.Engine.Interval.Duration, profile.Name, profile.Strategy)
	collectors.PollLoop(ctx, cfg.Engine.Interval.Duration, sources, e.handle)
}

func setupRedis(ctx context.Context, cfg *config.Config) *redis.Client {
	if !cfg.Redis.Enabled {
		return nil
	}
	client, err := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logging.Errorf("[arb-engine] redis disabled: %v", err)
		return nil
	}
	if err := cache.Ping(ctx, client); err != nil {
		logging.Errorf("[arb-engine] redis unavailable, publishing without dedupe: %v", err)
		client.Close()
		return nil
	}
	return client
}

func setupWriter(ctx context.Context, brokers []string, topic string) *kafkago.Writer {
	waitCtx, cancel := context.WithTimeout(ctx, 45*time.Second)
	defer cancel()
	if err := kafka.WaitForBroker(waitCtx, brokers); err != nil {
		logging.Errorf("[arb-engine] kafka unavailable, recording locally: %v", err)
		return nil
	}
	ensureCtx, cancelEnsure := context.WithTimeout(ctx, 30*time.Second)
	if err := kafka.EnsureTopic(ensureCtx, brokers, topic, 0); err != nil {
		logging.Errorf("[arb-engine] ensure topic warning: %v", err)
	}
	cancelEnsure()
	return kafka.NewWriter(brokers, topic)
}
