package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load merges the TOML file at path (skipped when path is empty) over
// Defaults, loads .env if present, then applies environment overrides. The
// result is not validated.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: decode %s: %w", path, err)
		}
	}

	_ = godotenv.Load()

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

// applyEnvOverrides reads ARB_* variables, plus the bare names older
// deployments set (KAFKA_BROKERS, SQLITE_PATH, REDIS_ADDR, NEBIUS_*).
func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.LogLevel, "LOG_LEVEL")
	setStr(&cfg.LogLevel, "ARB_LOG_LEVEL")

	setStr(&cfg.Polymarket.BaseURL, "ARB_POLYMARKET_BASE_URL")
	setInt(&cfg.Polymarket.PageSize, "POLYMARKET_PAGE_SIZE")
	setInt(&cfg.Polymarket.PageSize, "ARB_POLYMARKET_PAGE_SIZE")
	setInt(&cfg.Polymarket.Pages, "POLYMARKET_PAGES")
	setInt(&cfg.Polymarket.Pages, "ARB_POLYMARKET_PAGES")
	setDuration(&cfg.Polymarket.Timeout, "ARB_POLYMARKET_TIMEOUT")

	setStr(&cfg.Kalshi.BaseURL, "ARB_KALSHI_BASE_URL")
	setInt(&cfg.Kalshi.PageSize, "KALSHI_PAGE_SIZE")
	setInt(&cfg.Kalshi.PageSize, "ARB_KALSHI_PAGE_SIZE")
	setInt(&cfg.Kalshi.Pages, "KALSHI_PAGES")
	setInt(&cfg.Kalshi.Pages, "ARB_KALSHI_PAGES")
	setDuration(&cfg.Kalshi.Timeout, "ARB_KALSHI_TIMEOUT")

	setBool(&cfg.Redis.Enabled, "ARB_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "REDIS_ADDR")
	setStr(&cfg.Redis.Addr, "ARB_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "REDIS_PASSWORD")
	setStr(&cfg.Redis.Password, "ARB_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "ARB_REDIS_DB")
	setDuration(&cfg.Redis.TTL, "ARB_REDIS_TTL")

	setBool(&cfg.Kafka.Enabled, "ARB_KAFKA_ENABLED")
	setStringSlice(&cfg.Kafka.Brokers, "KAFKA_BROKERS")
	setStringSlice(&cfg.Kafka.Brokers, "ARB_KAFKA_BROKERS")
	setStr(&cfg.Kafka.OpportunityTopic, "ARB_KAFKA_OPPORTUNITY_TOPIC")
	setStr(&cfg.Kafka.Group, "ARB_KAFKA_GROUP")
	setInt(&cfg.Kafka.Workers, "ARB_KAFKA_WORKERS")

	setStr(&cfg.SQLite.Path, "SQLITE_PATH")
	setStr(&cfg.SQLite.Path, "ARB_SQLITE_PATH")

	setInt(&cfg.Matching.Workers, "ARB_MATCHING_WORKERS")
	setFloat64(&cfg.Matching.PreliminaryFloor, "ARB_MATCHING_PRELIMINARY_FLOOR")
	setStringSlice(&cfg.Matching.Prefilters, "ARB_MATCHING_PREFILTERS")
	setStr(&cfg.Matching.LogMode, "ARB_MATCHING_LOG_MODE")
	setStr(&cfg.Matching.LogPath, "ARB_MATCHING_LOG_PATH")

	setFloat64(&cfg.Arbitrage.MinProfitThreshold, "ARB_ARBITRAGE_MIN_PROFIT_THRESHOLD")
	setFloat64(&cfg.Arbitrage.LowVolumeUSD, "ARB_ARBITRAGE_LOW_VOLUME_USD")

	setStr(&cfg.Embeddings.APIKey, "NEBIUS_API_KEY")
	setStr(&cfg.Embeddings.APIKey, "ARB_EMBEDDINGS_API_KEY")
	setStr(&cfg.Embeddings.BaseURL, "NEBIUS_BASE_URL")
	setStr(&cfg.Embeddings.BaseURL, "ARB_EMBEDDINGS_BASE_URL")
	setStr(&cfg.Embeddings.Model, "NEBIUS_EMBED_MODEL")
	setStr(&cfg.Embeddings.Model, "ARB_EMBEDDINGS_MODEL")
	setFloat64(&cfg.Embeddings.MinCosine, "ARB_EMBEDDINGS_MIN_COSINE")

	setBool(&cfg.LLM.Enabled, "ARB_LLM_ENABLED")
	setStr(&cfg.LLM.APIKey, "NEBIUS_API_KEY")
	setStr(&cfg.LLM.APIKey, "ARB_LLM_API_KEY")
	setStr(&cfg.LLM.BaseURL, "NEBIUS_BASE_URL")
	setStr(&cfg.LLM.BaseURL, "ARB_LLM_BASE_URL")
	setStr(&cfg.LLM.Model, "ARB_LLM_MODEL")
	setBool(&cfg.LLM.JSONMode, "ARB_LLM_JSON_MODE")

	setStr(&cfg.Report.Dir, "ARB_REPORT_DIR")

	setDuration(&cfg.Engine.Interval, "ARB_ENGINE_INTERVAL")
	setStr(&cfg.Engine.Profile, "ARB_ENGINE_PROFILE")
	setFloat64(&cfg.Engine.MinDelta, "ARB_ENGINE_MIN_DELTA")
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				cleaned = append(cleaned, s)
			}
		}
		*dst = cleaned
	}
}
