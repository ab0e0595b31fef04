// Package config loads scanner settings from TOML, .env and ARB_* variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/hetulpatel/arbscanner/internal/arb"
	"github.com/hetulpatel/arbscanner/internal/collectors"
	"github.com/hetulpatel/arbscanner/internal/kafka"
	"github.com/hetulpatel/arbscanner/internal/kalshi"
	"github.com/hetulpatel/arbscanner/internal/matcher"
	"github.com/hetulpatel/arbscanner/internal/polymarket"
	"github.com/hetulpatel/arbscanner/internal/report"
)

type Config struct {
	LogLevel   string           `toml:"log_level"`
	Polymarket VenueConfig      `toml:"polymarket"`
	Kalshi     VenueConfig      `toml:"kalshi"`
	Redis      RedisConfig      `toml:"redis"`
	Kafka      KafkaConfig      `toml:"kafka"`
	SQLite     SQLiteConfig     `toml:"sqlite"`
	Matching   MatchingConfig   `toml:"matching"`
	Arbitrage  ArbitrageConfig  `toml:"arbitrage"`
	Profiles   ProfilesConfig   `toml:"profiles"`
	Embeddings EmbeddingsConfig `toml:"embeddings"`
	LLM        LLMConfig        `toml:"llm"`
	Report     ReportConfig     `toml:"report"`
	Engine     EngineConfig     `toml:"engine"`
}

// VenueConfig holds catalog client parameters for one venue.
type VenueConfig struct {
	BaseURL    string   `toml:"base_url"`
	PageSize   int      `toml:"page_size"`
	Pages      int      `toml:"pages"`
	Timeout    duration `toml:"timeout"`
	MaxRetries int      `toml:"max_retries"`
}

type RedisConfig struct {
	Enabled  bool     `toml:"enabled"`
	Addr     string   `toml:"addr"`
	Password string   `toml:"password"`
	DB       int      `toml:"db"`
	TTL      duration `toml:"ttl"`
}

type KafkaConfig struct {
	Enabled          bool     `toml:"enabled"`
	Brokers          []string `toml:"brokers"`
	OpportunityTopic string   `toml:"opportunity_topic"`
	Group            string   `toml:"group"`
	Workers          int      `toml:"workers"`
}

type SQLiteConfig struct {
	Path string `toml:"path"`
}

type WeightsConfig struct {
	Title    float64 `toml:"title"`
	Entity   float64 `toml:"entity"`
	Category float64 `toml:"category"`
	Date     float64 `toml:"date"`
}

type DateBandsConfig struct {
	NearMonths float64 `toml:"near_months"`
	MidMonths  float64 `toml:"mid_months"`
	Near       float64 `toml:"near"`
	Mid        float64 `toml:"mid"`
	Far        float64 `toml:"far"`
}

// Prefilter names accepted in [matching].prefilters.
const (
	PrefilterCategory  = "category"
	PrefilterEndDate   = "end_date"
	PrefilterEmbedding = "embedding"
)

type MatchingConfig struct {
	Workers          int             `toml:"workers"`
	PreliminaryFloor float64         `toml:"preliminary_floor"`
	Weights          WeightsConfig   `toml:"weights"`
	Dates            DateBandsConfig `toml:"dates"`
	Prefilters       []string        `toml:"prefilters"`
	EndDateWindow    duration        `toml:"end_date_window"`
	LogMode          string          `toml:"log_mode"`
	LogPath          string          `toml:"log_path"`
}

type ArbitrageConfig struct {
	MinProfitThreshold   float64 `toml:"min_profit_threshold"`
	LowVolumeUSD         float64 `toml:"low_volume_usd"`
	AlignmentSimilarity  float64 `toml:"alignment_similarity"`
	ExpiryWarningDays    float64 `toml:"expiry_warning_days"`
	ConfidenceWindowDays float64 `toml:"confidence_window_days"`
	HighRisk             float64 `toml:"high_risk"`
	MediumRisk           float64 `toml:"medium_risk"`
}

type ProfileConfig struct {
	Strategy       string            `toml:"strategy"`
	MatchThreshold float64           `toml:"match_threshold"`
	MinProfit      float64           `toml:"min_profit"`
	SortBy         string            `toml:"sort_by"`
	Buckets        report.Thresholds `toml:"buckets"`
}

type ProfilesConfig struct {
	Batch ProfileConfig `toml:"batch"`
	Live  ProfileConfig `toml:"live"`
}

type EmbeddingsConfig struct {
	APIKey    string  `toml:"api_key"`
	BaseURL   string  `toml:"base_url"`
	Model     string  `toml:"model"`
	MinCosine float64 `toml:"min_cosine"`
}

type LLMConfig struct {
	Enabled   bool     `toml:"enabled"`
	APIKey    string   `toml:"api_key"`
	BaseURL   string   `toml:"base_url"`
	Model     string   `toml:"model"`
	Timeout   duration `toml:"timeout"`
	MaxTokens int      `toml:"max_tokens"`
	JSONMode  bool     `toml:"json_mode"`
}

type ReportConfig struct {
	Dir string `toml:"dir"`
}

// EngineConfig drives the live loop.
type EngineConfig struct {
	Interval duration `toml:"interval"`
	Profile  string   `toml:"profile"`
	// MinDelta is the profit gain needed to republish a known pair.
	MinDelta float64 `toml:"min_delta"`
}

// duration decodes TOML strings like "30s" or "5m".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func profileDefaults(p report.Profile) ProfileConfig {
	return ProfileConfig{
		Strategy:       string(p.Strategy),
		MatchThreshold: p.MatchThreshold,
		MinProfit:      p.MinProfit,
		SortBy:         string(p.SortBy),
		Buckets:        p.Buckets,
	}
}

func Defaults() Config {
	w := matcher.DefaultWeights()
	d := matcher.DefaultDateBands()
	a := arb.DefaultConfig()
	return Config{
		LogLevel: "info",
		Polymarket: VenueConfig{
			BaseURL:    "https://gamma-api.polymarket.com/markets",
			PageSize:   500,
			Pages:      10,
			Timeout:    duration{15 * time.Second},
			MaxRetries: 3,
		},
		Kalshi: VenueConfig{
			BaseURL:    "https://api.elections.kalshi.com/trade-api/v2/markets",
			PageSize:   500,
			Pages:      10,
			Timeout:    duration{15 * time.Second},
			MaxRetries: 3,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
			TTL:  duration{240 * time.Hour},
		},
		Kafka: KafkaConfig{
			Brokers:          []string{kafka.DefaultBroker},
			OpportunityTopic: kafka.DefaultOpportunityTopic,
			Group:            "arb-sink",
			Workers:          1,
		},
		SQLite: SQLiteConfig{Path: "data/arbscanner.db"},
		Matching: MatchingConfig{
			PreliminaryFloor: matcher.DefaultPreliminaryFloor,
			Weights:          WeightsConfig{Title: w.Title, Entity: w.Entity, Category: w.Category, Date: w.Date},
			Dates:            DateBandsConfig{NearMonths: d.NearMonths, MidMonths: d.MidMonths, Near: d.Near, Mid: d.Mid, Far: d.Far},
			EndDateWindow:    duration{90 * 24 * time.Hour},
			LogMode:          "quiet",
		},
		Arbitrage: ArbitrageConfig{
			MinProfitThreshold:   a.MinProfitThreshold,
			LowVolumeUSD:         a.LowVolumeUSD,
			AlignmentSimilarity:  a.AlignmentSimilarity,
			ExpiryWarningDays:    a.ExpiryWarningDays,
			ConfidenceWindowDays: a.ConfidenceWindowDays,
			HighRisk:             a.HighRisk,
			MediumRisk:           a.MediumRisk,
		},
		Profiles: ProfilesConfig{
			Batch: profileDefaults(report.BatchProfile()),
			Live:  profileDefaults(report.LiveProfile()),
		},
		Embeddings: EmbeddingsConfig{MinCosine: 0.5},
		LLM: LLMConfig{
			Timeout:   duration{60 * time.Second},
			MaxTokens: 400,
		},
		Report: ReportConfig{Dir: "reports"},
		Engine: EngineConfig{
			Interval: duration{time.Minute},
			Profile:  report.ProfileLive,
			MinDelta: 0.005,
		},
	}
}

// Profile resolves a named profile from config.
func (c *Config) Profile(name string) (report.Profile, error) {
	var pc ProfileConfig
	switch strings.ToLower(strings.TrimSpace(name)) {
	case report.ProfileBatch, "":
		name, pc = report.ProfileBatch, c.Profiles.Batch
	case report.ProfileLive:
		name, pc = report.ProfileLive, c.Profiles.Live
	default:
		return report.Profile{}, fmt.Errorf("config: unknown profile %q", name)
	}
	strategy, err := matcher.ParseStrategy(pc.Strategy)
	if err != nil {
		return report.Profile{}, fmt.Errorf("config: profile %s: %w", name, err)
	}
	sortBy, err := report.ParseSortKey(pc.SortBy)
	if err != nil {
		return report.Profile{}, fmt.Errorf("config: profile %s: %w", name, err)
	}
	return report.Profile{
		Name:           name,
		Strategy:       strategy,
		MatchThreshold: pc.MatchThreshold,
		MinProfit:      pc.MinProfit,
		SortBy:         sortBy,
		Buckets:        pc.Buckets,
	}, nil
}

func (c *Config) Weights() matcher.Weights {
	w := c.Matching.Weights
	return matcher.Weights{Title: w.Title, Entity: w.Entity, Category: w.Category, Date: w.Date}
}

func (c *Config) DateBands() matcher.DateBands {
	d := c.Matching.Dates
	return matcher.DateBands{NearMonths: d.NearMonths, MidMonths: d.MidMonths, Near: d.Near, Mid: d.Mid, Far: d.Far}
}

func (c *Config) ArbConfig() arb.Config {
	a := c.Arbitrage
	return arb.Config{
		MinProfitThreshold:   a.MinProfitThreshold,
		LowVolumeUSD:         a.LowVolumeUSD,
		AlignmentSimilarity:  a.AlignmentSimilarity,
		ExpiryWarningDays:    a.ExpiryWarningDays,
		ConfidenceWindowDays: a.ConfidenceWindowDays,
		HighRisk:             a.HighRisk,
		MediumRisk:           a.MediumRisk,
	}
}

func (c *Config) PolymarketClient() polymarket.Config {
	return polymarket.Config{BaseURL: c.Polymarket.BaseURL, Timeout: c.Polymarket.Timeout.Duration, MaxRetries: c.Polymarket.MaxRetries}
}

func (c *Config) KalshiClient() kalshi.Config {
	return kalshi.Config{BaseURL: c.Kalshi.BaseURL, Timeout: c.Kalshi.Timeout.Duration, MaxRetries: c.Kalshi.MaxRetries}
}

func (v VenueConfig) FetchOptions() collectors.FetchOptions {
	return collectors.FetchOptions{Pages: v.Pages, PageSize: v.PageSize}
}

// HasPrefilter reports whether name is listed in [matching].prefilters.
func (c *Config) HasPrefilter(name string) bool {
	for _, p := range c.Matching.Prefilters {
		if strings.EqualFold(strings.TrimSpace(p), name) {
			return true
		}
	}
	return false
}

// Validate checks ranges and names.
func (c *Config) Validate() error {
	unit := map[string]float64{
		"matching.preliminary_floor":     c.Matching.PreliminaryFloor,
		"matching.weights.title":         c.Matching.Weights.Title,
		"matching.weights.entity":        c.Matching.Weights.Entity,
		"matching.weights.category":      c.Matching.Weights.Category,
		"matching.weights.date":          c.Matching.Weights.Date,
		"matching.dates.near":            c.Matching.Dates.Near,
		"matching.dates.mid":             c.Matching.Dates.Mid,
		"matching.dates.far":             c.Matching.Dates.Far,
		"arbitrage.min_profit_threshold": c.Arbitrage.MinProfitThreshold,
		"arbitrage.alignment_similarity": c.Arbitrage.AlignmentSimilarity,
		"arbitrage.high_risk":            c.Arbitrage.HighRisk,
		"arbitrage.medium_risk":          c.Arbitrage.MediumRisk,
		"embeddings.min_cosine":          c.Embeddings.MinCosine,
		"engine.min_delta":               c.Engine.MinDelta,
	}
	for name, v := range unit {
		if v < 0 || v > 1 {
			return fmt.Errorf("config: %s %.4f outside [0,1]", name, v)
		}
	}
	if c.Matching.Dates.NearMonths > c.Matching.Dates.MidMonths {
		return fmt.Errorf("config: matching.dates.near_months must not exceed mid_months")
	}
	if c.Arbitrage.MediumRisk > c.Arbitrage.HighRisk {
		return fmt.Errorf("config: arbitrage.medium_risk must not exceed high_risk")
	}
	for _, name := range []string{report.ProfileBatch, report.ProfileLive} {
		p, err := c.Profile(name)
		if err != nil {
			return err
		}
		if err := p.Validate(); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	if _, err := c.Profile(c.Engine.Profile); err != nil {
		return fmt.Errorf("config: engine: %w", err)
	}
	for _, p := range c.Matching.Prefilters {
		switch strings.ToLower(strings.TrimSpace(p)) {
		case PrefilterCategory, PrefilterEndDate, PrefilterEmbedding:
		default:
			return fmt.Errorf("config: unknown prefilter %q", p)
		}
	}
	return nil
}
