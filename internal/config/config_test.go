package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hetulpatel/arbscanner/internal/matcher"
	"github.com/hetulpatel/arbscanner/internal/report"
)

func writeTOML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "arbscanner.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())

	batch, err := cfg.Profile("batch")
	require.NoError(t, err)
	assert.Equal(t, report.BatchProfile(), batch)

	live, err := cfg.Profile("live")
	require.NoError(t, err)
	assert.Equal(t, report.LiveProfile(), live)

	assert.Equal(t, matcher.DefaultWeights(), cfg.Weights())
	assert.Equal(t, matcher.DefaultDateBands(), cfg.DateBands())
	assert.Equal(t, 0.01, cfg.ArbConfig().MinProfitThreshold)
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := writeTOML(t, `
log_level = "debug"

[polymarket]
pages = 2
timeout = "5s"

[matching]
prefilters = ["category", "end_date"]

[matching.weights]
title = 0.5

[profiles.batch]
strategy = "text"
match_threshold = 0.7

[profiles.batch.buckets]
exact = 0.99
high = 0.9
medium = 0.7
low = 0.5

[engine]
interval = "30s"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 2, cfg.Polymarket.Pages)
	assert.Equal(t, 500, cfg.Polymarket.PageSize)
	assert.Equal(t, 5*time.Second, cfg.Polymarket.Timeout.Duration)
	assert.Equal(t, 0.5, cfg.Weights().Title)
	assert.Equal(t, 0.3, cfg.Weights().Entity)
	assert.True(t, cfg.HasPrefilter(PrefilterEndDate))
	assert.False(t, cfg.HasPrefilter(PrefilterEmbedding))
	assert.Equal(t, 30*time.Second, cfg.Engine.Interval.Duration)

	batch, err := cfg.Profile("batch")
	require.NoError(t, err)
	assert.Equal(t, matcher.StrategyText, batch.Strategy)
	assert.Equal(t, 0.7, batch.MatchThreshold)
	assert.Equal(t, 0.99, batch.Buckets.Exact)
	assert.Equal(t, report.SortBySimilarity, batch.SortBy)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092")
	t.Setenv("SQLITE_PATH", "/tmp/legacy.db")
	t.Setenv("ARB_SQLITE_PATH", "/tmp/arb.db")
	t.Setenv("ARB_ARBITRAGE_MIN_PROFIT_THRESHOLD", "0.02")
	t.Setenv("ARB_REDIS_ENABLED", "true")
	t.Setenv("ARB_ENGINE_INTERVAL", "2m")
	t.Setenv("ARB_MATCHING_WORKERS", "not-a-number")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "/tmp/arb.db", cfg.SQLite.Path)
	assert.Equal(t, 0.02, cfg.Arbitrage.MinProfitThreshold)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 2*time.Minute, cfg.Engine.Interval.Duration)
	assert.Zero(t, cfg.Matching.Workers)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"weight above one":  func(c *Config) { c.Matching.Weights.Entity = 1.5 },
		"negative floor":    func(c *Config) { c.Matching.PreliminaryFloor = -0.1 },
		"unknown strategy":  func(c *Config) { c.Profiles.Live.Strategy = "embedding" },
		"unknown sort":      func(c *Config) { c.Profiles.Batch.SortBy = "volume" },
		"unknown prefilter": func(c *Config) { c.Matching.Prefilters = []string{"volume"} },
		"unknown engine":    func(c *Config) { c.Engine.Profile = "nightly" },
		"risk order":        func(c *Config) { c.Arbitrage.MediumRisk = 0.9 },
		"bucket order":      func(c *Config) { c.Profiles.Batch.Buckets.Low = 0.99 },
		"date bands order":  func(c *Config) { c.Matching.Dates.NearMonths = 12 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Defaults()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
