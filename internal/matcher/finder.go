package matcher

import (
	"fmt"
	"runtime"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/hetulpatel/arbscanner/internal/logging"
	"github.com/hetulpatel/arbscanner/internal/matches"
	"github.com/hetulpatel/arbscanner/internal/models"
)

// Strategy selects how a pair is scored.
type Strategy string

const (
	// StrategyWeighted uses the composite four-signal score.
	StrategyWeighted Strategy = "weighted"
	// StrategyText uses text similarity alone.
	StrategyText Strategy = "text"
)

// DefaultThreshold is the minimum kept score per strategy.
func DefaultThreshold(s Strategy) float64 {
	if s == StrategyText {
		return 0.6
	}
	return 0.4
}

// DefaultPreliminaryFloor prunes pairs before the composite score is computed.
const DefaultPreliminaryFloor = 0.3

func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategyWeighted, "":
		return StrategyWeighted, nil
	case StrategyText:
		return StrategyText, nil
	default:
		return "", fmt.Errorf("matcher: unknown strategy %q", s)
	}
}

type Config struct {
	Scorer           *Scorer
	Strategy         Strategy
	Threshold        float64
	PreliminaryFloor float64
	Workers          int
	Pairs            PairSource
	Logger           *Logger
}

// Finder enumerates candidate pairs across two catalogs and keeps the ones
// that clear the strategy's threshold.
type Finder struct {
	scorer    *Scorer
	strategy  Strategy
	threshold float64
	floor     float64
	workers   int
	pairs     PairSource
	logger    *Logger
}

func NewFinder(cfg Config) (*Finder, error) {
	strategy, err := ParseStrategy(string(cfg.Strategy))
	if err != nil {
		return nil, err
	}
	scorer := cfg.Scorer
	if scorer == nil {
		scorer = NewScorer(ScorerConfig{})
	}
	threshold := cfg.Threshold
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold(strategy)
	}
	floor := cfg.PreliminaryFloor
	if floor < 0 || floor > 1 {
		return nil, fmt.Errorf("matcher: preliminary floor %.2f outside [0,1]", floor)
	}
	if floor == 0 {
		floor = DefaultPreliminaryFloor
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	pairs := cfg.Pairs
	if pairs == nil {
		pairs = CrossProduct{}
	}
	return &Finder{
		scorer:    scorer,
		strategy:  strategy,
		threshold: threshold,
		floor:     floor,
		workers:   workers,
		pairs:     pairs,
		logger:    cfg.Logger,
	}, nil
}

func (f *Finder) Strategy() Strategy { return f.strategy }
func (f *Finder) Threshold() float64 { return f.threshold }
func (f *Finder) Scorer() *Scorer    { return f.scorer }

// Find scores every enumerated pair and returns the kept candidates sorted by
// descending similarity. Ties keep enumeration order. Scoring runs on several
// workers; each result lands in its enumeration slot so the merge is
// deterministic.
func (f *Finder) Find(a, b []models.Market) []matches.Candidate {
	if len(a) == 0 || len(b) == 0 {
		return []matches.Candidate{}
	}
	pairs := slices.Collect(f.pairs.Pairs(a, b))
	results := make([]*matches.Candidate, len(pairs))

	chunk := (len(pairs) + f.workers - 1) / f.workers
	if chunk < 64 {
		chunk = 64
	}
	var g errgroup.Group
	g.SetLimit(f.workers)
	for start := 0; start < len(pairs); start += chunk {
		end := min(start+chunk, len(pairs))
		g.Go(func() error {
			for k := start; k < end; k++ {
				p := pairs[k]
				results[k] = f.evaluate(&a[p.A], &b[p.B])
			}
			return nil
		})
	}
	_ = g.Wait()

	out := make([]matches.Candidate, 0)
	for _, c := range results {
		if c != nil {
			out = append(out, *c)
		}
	}
	slices.SortStableFunc(out, func(x, y matches.Candidate) int {
		switch {
		case x.Similarity > y.Similarity:
			return -1
		case x.Similarity < y.Similarity:
			return 1
		default:
			return 0
		}
	})
	logging.Debugf("[matcher] strategy=%s pairs=%d kept=%d threshold=%.2f", f.strategy, len(pairs), len(out), f.threshold)
	return out
}

// Evaluate scores one pair, returning nil when it is pruned.
func (f *Finder) Evaluate(a, b *models.Market) *matches.Candidate {
	return f.evaluate(a, b)
}

func (f *Finder) evaluate(a, b *models.Market) *matches.Candidate {
	title := f.scorer.TextSimilarity(a, b)
	if f.strategy == StrategyText {
		if title < f.threshold {
			return nil
		}
		c := &matches.Candidate{
			A:          *a,
			B:          *b,
			Similarity: title,
			Breakdown:  matches.Breakdown{TitleSimilarity: title},
			Factors:    []string{fmt.Sprintf("title similarity %.2f", title)},
		}
		f.logger.LogCandidate(c, f.threshold)
		return c
	}

	if title < f.floor {
		return nil
	}
	score := f.scorer.Score(a, b)
	if score.Value < f.threshold {
		logging.Debugf("[matcher] below threshold %s:%s ~ %s:%s score=%.4f", a.Venue, a.ID, b.Venue, b.ID, score.Value)
		return nil
	}
	c := &matches.Candidate{
		A:          *a,
		B:          *b,
		Similarity: score.Value,
		Breakdown:  score.Breakdown,
		Factors:    score.Factors,
	}
	f.logger.LogCandidate(c, f.threshold)
	return c
}
