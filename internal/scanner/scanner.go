// Package scanner assembles the matching pipeline from config and runs one
// scan over a Polymarket and a Kalshi catalog.
package scanner

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hetulpatel/arbscanner/internal/arb"
	"github.com/hetulpatel/arbscanner/internal/cache"
	"github.com/hetulpatel/arbscanner/internal/categories"
	"github.com/hetulpatel/arbscanner/internal/config"
	"github.com/hetulpatel/arbscanner/internal/embed"
	"github.com/hetulpatel/arbscanner/internal/llm"
	"github.com/hetulpatel/arbscanner/internal/logging"
	"github.com/hetulpatel/arbscanner/internal/matcher"
	"github.com/hetulpatel/arbscanner/internal/matches"
	"github.com/hetulpatel/arbscanner/internal/models"
	"github.com/hetulpatel/arbscanner/internal/report"
)

// Options wires a Scanner. Redis, Embedder and Completer are optional; the
// last two replace the clients built from config.
type Options struct {
	Config    *config.Config
	Profile   report.Profile
	Redis     *redis.Client
	Embedder  embed.Embedder
	Completer llm.Completer
}

type Scanner struct {
	profile  report.Profile
	pipeline *arb.Pipeline
	finder   *matcher.Finder
	blocker  *embed.Blocker
	entities *llm.EntityExtractor
}

func New(opts Options) (*Scanner, error) {
	cfg := opts.Config
	if cfg == nil {
		d := config.Defaults()
		cfg = &d
	}
	if opts.Profile.Name == "" {
		p, err := cfg.Profile(report.ProfileBatch)
		if err != nil {
			return nil, err
		}
		opts.Profile = p
	}

	s := &Scanner{profile: opts.Profile}

	scorerCfg := matcher.ScorerConfig{}
	weights := cfg.Weights()
	dates := cfg.DateBands()
	scorerCfg.Weights = &weights
	scorerCfg.Dates = &dates

	completer := opts.Completer
	if completer == nil && cfg.LLM.Enabled {
		client, err := llm.New(llm.Config{
			APIKey:    cfg.LLM.APIKey,
			BaseURL:   cfg.LLM.BaseURL,
			Model:     cfg.LLM.Model,
			Timeout:   cfg.LLM.Timeout.Duration,
			MaxTokens: cfg.LLM.MaxTokens,
			JSONMode:  cfg.LLM.JSONMode,
		})
		if err != nil {
			return nil, fmt.Errorf("scanner: %w", err)
		}
		completer = client
	}
	if completer != nil {
		var ec cache.EntityCache
		if opts.Redis != nil {
			ec = cache.NewRedisEntityCache(opts.Redis, cfg.Redis.TTL.Duration, "")
		}
		s.entities = llm.NewEntityExtractor(completer, ec, cfg.Matching.Workers)
		scorerCfg.Extractor = s.entities
	}

	var filters []matcher.PairFilter
	if cfg.HasPrefilter(config.PrefilterCategory) {
		filters = append(filters, matcher.CategoryBlocker{Mapper: categories.NewMapper(categories.DefaultTable())})
	}
	if cfg.HasPrefilter(config.PrefilterEndDate) {
		filters = append(filters, matcher.EndDateBlocker{Window: cfg.Matching.EndDateWindow.Duration})
	}
	if cfg.HasPrefilter(config.PrefilterEmbedding) {
		embedder := opts.Embedder
		if embedder == nil {
			client, err := embed.New(embed.Config{
				APIKey:  cfg.Embeddings.APIKey,
				BaseURL: cfg.Embeddings.BaseURL,
				Model:   cfg.Embeddings.Model,
			})
			if err != nil {
				return nil, fmt.Errorf("scanner: %w", err)
			}
			embedder = client
		}
		if opts.Redis != nil {
			embedder = embed.Cached(embedder, cache.NewRedisEmbeddingCache(opts.Redis, cfg.Redis.TTL.Duration, ""))
		}
		s.blocker = embed.NewBlocker(embedder, cfg.Embeddings.MinCosine, cfg.Matching.Workers)
		filters = append(filters, s.blocker)
	}
	var pairs matcher.PairSource
	if len(filters) > 0 {
		pairs = matcher.Filtered(filters...)
	}

	finder, err := matcher.NewFinder(matcher.Config{
		Scorer:           matcher.NewScorer(scorerCfg),
		Strategy:         opts.Profile.Strategy,
		Threshold:        opts.Profile.MatchThreshold,
		PreliminaryFloor: cfg.Matching.PreliminaryFloor,
		Workers:          cfg.Matching.Workers,
		Pairs:            pairs,
		Logger:           matcher.NewLogger(matcher.ParseLogMode(cfg.Matching.LogMode), cfg.Matching.LogPath),
	})
	if err != nil {
		return nil, fmt.Errorf("scanner: %w", err)
	}
	s.finder = finder
	s.pipeline = arb.NewPipeline(finder, arb.NewAnalyzer(cfg.ArbConfig()))
	return s, nil
}

func (s *Scanner) Profile() report.Profile { return s.profile }
func (s *Scanner) Finder() *matcher.Finder { return s.finder }

// Scan warms the network-backed signals, matches a against b and returns the
// ranked opportunities. Embedding or LLM failures degrade to the unblocked
// pairs and the regex extractor; only cancellation is returned.
func (s *Scanner) Scan(ctx context.Context, a, b []models.Market, now time.Time) ([]matches.Opportunity, error) {
	if s.entities != nil {
		if err := s.entities.WarmMarkets(ctx, a, b); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logging.Warnf("[scanner] entity warmup failed: %v", err)
		}
	}
	if s.blocker != nil {
		if err := s.blocker.Prepare(ctx, a, b); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logging.Warnf("[scanner] embedding prefilter degraded: %v", err)
		}
	}

	opps := s.pipeline.Run(a, b, now)
	ranked := report.Rank(opps, s.profile)
	logging.Infof("[scanner] profile=%s polymarket=%d kalshi=%d opportunities=%d kept=%d",
		s.profile.Name, len(a), len(b), len(opps), len(ranked))
	return ranked, nil
}

// Split returns the tradable Polymarket and Kalshi markets of a fetch.
func Split(catalogs []models.Catalog) (poly, kalshi []models.Market) {
	for _, c := range catalogs {
		switch c.Venue {
		case models.VenuePolymarket:
			poly = append(poly, c.Tradable()...)
		case models.VenueKalshi:
			kalshi = append(kalshi, c.Tradable()...)
		}
	}
	return poly, kalshi
}
