package arb

import (
	"time"

	"github.com/hetulpatel/arbscanner/internal/matcher"
	"github.com/hetulpatel/arbscanner/internal/matches"
	"github.com/hetulpatel/arbscanner/internal/models"
)

// Pipeline matches two catalogs and prices every candidate.
type Pipeline struct {
	finder   *matcher.Finder
	analyzer *Analyzer
}

func NewPipeline(finder *matcher.Finder, analyzer *Analyzer) *Pipeline {
	return &Pipeline{finder: finder, analyzer: analyzer}
}

// DefaultPipeline uses the weighted strategy and default analyzer settings.
func DefaultPipeline() *Pipeline {
	finder, err := matcher.NewFinder(matcher.Config{})
	if err != nil {
		// The zero config always validates.
		panic(err)
	}
	return NewPipeline(finder, NewAnalyzer(DefaultConfig()))
}

// Run returns the opportunities in candidate order. Empty or partial catalogs
// yield a shorter (possibly empty, never nil) list.
func (p *Pipeline) Run(a, b []models.Market, now time.Time) []matches.Opportunity {
	candidates := p.finder.Find(a, b)
	out := make([]matches.Opportunity, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		if opp := p.analyzer.Analyze(c, c.A.Price, c.B.Price, now); opp != nil {
			out = append(out, *opp)
		}
	}
	return out
}

// Candidates exposes the match step alone.
func (p *Pipeline) Candidates(a, b []models.Market) []matches.Candidate {
	return p.finder.Find(a, b)
}

// FindOpportunities runs the default pipeline.
func FindOpportunities(a, b []models.Market, now time.Time) []matches.Opportunity {
	return DefaultPipeline().Run(a, b, now)
}
