// Package cmd holds the arbscan command tree.
package cmd

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/hetulpatel/arbscanner/internal/cache"
	"github.com/hetulpatel/arbscanner/internal/collectors"
	"github.com/hetulpatel/arbscanner/internal/config"
	"github.com/hetulpatel/arbscanner/internal/kalshi"
	"github.com/hetulpatel/arbscanner/internal/logging"
	"github.com/hetulpatel/arbscanner/internal/models"
	"github.com/hetulpatel/arbscanner/internal/polymarket"
	"github.com/hetulpatel/arbscanner/internal/storage/sqlite"
)

// ConfigFile is bound to the root --config flag.
var ConfigFile string

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(ConfigFile)
	if err != nil {
		return nil, err
	}
	logging.SetLevel(logging.ParseLevel(cfg.LogLevel))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func venueSources(cfg *config.Config) []collectors.Source {
	return []collectors.Source{
		{
			Venue:     models.VenuePolymarket,
			Collector: polymarket.NewClient(cfg.PolymarketClient()),
			Options:   cfg.Polymarket.FetchOptions(),
		},
		{
			Venue:     models.VenueKalshi,
			Collector: kalshi.NewClient(cfg.KalshiClient()),
			Options:   cfg.Kalshi.FetchOptions(),
		},
	}
}

func openStore(ctx context.Context, cfg *config.Config) (*sqlite.Store, error) {
	store, err := sqlite.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, err
	}
	if err := store.CreateTables(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return store, nil
}

// openRedis returns nil when Redis is disabled or unreachable; the caches
// it backs are optional.
func openRedis(ctx context.Context, cfg *config.Config) *redis.Client {
	if !cfg.Redis.Enabled {
		return nil
	}
	client, err := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logging.Warnf("[arbscan] redis disabled: %v", err)
		return nil
	}
	if err := cache.Ping(ctx, client); err != nil {
		logging.Warnf("[arbscan] redis unreachable at %s: %v", cfg.Redis.Addr, err)
		client.Close()
		return nil
	}
	return client
}
