package matcher

import (
	"fmt"
	"math"
	"strings"

	"github.com/hetulpatel/arbscanner/internal/categories"
	"github.com/hetulpatel/arbscanner/internal/entities"
	"github.com/hetulpatel/arbscanner/internal/matches"
	"github.com/hetulpatel/arbscanner/internal/models"
	"github.com/hetulpatel/arbscanner/internal/textsim"
)

// Weights of the four match signals.
type Weights struct {
	Title    float64
	Entity   float64
	Category float64
	Date     float64
}

func DefaultWeights() Weights {
	return Weights{Title: 0.4, Entity: 0.3, Category: 0.2, Date: 0.1}
}

// DateBands scores end-date proximity: Near when the dates are less than
// NearMonths apart, Mid when less than MidMonths, Far otherwise.
type DateBands struct {
	NearMonths float64
	MidMonths  float64
	Near       float64
	Mid        float64
	Far        float64
}

func DefaultDateBands() DateBands {
	return DateBands{NearMonths: 3, MidMonths: 6, Near: 1.0, Mid: 0.5, Far: 0.1}
}

const hoursPerMonth = 24 * 30

// ScorerConfig wires the scorer's collaborators. Nil fields get defaults.
type ScorerConfig struct {
	Text       *textsim.Scorer
	Extractor  entities.Extractor
	Categories *categories.Mapper
	Weights    *Weights
	Dates      *DateBands
}

// Scorer combines title similarity, entity overlap, category agreement and
// date proximity into one composite score.
type Scorer struct {
	text       *textsim.Scorer
	extractor  entities.Extractor
	categories *categories.Mapper
	weights    Weights
	dates      DateBands
}

// Score is the composite result. Factors are for reporting only.
type Score struct {
	Value     float64
	Factors   []string
	Breakdown matches.Breakdown
}

func NewScorer(cfg ScorerConfig) *Scorer {
	s := &Scorer{
		text:       cfg.Text,
		extractor:  cfg.Extractor,
		categories: cfg.Categories,
		weights:    DefaultWeights(),
		dates:      DefaultDateBands(),
	}
	if s.text == nil {
		s.text = textsim.NewScorer()
	}
	if s.extractor == nil {
		s.extractor = entities.NewRegexExtractor()
	}
	if s.categories == nil {
		s.categories = categories.NewMapper(categories.DefaultTable())
	}
	if cfg.Weights != nil {
		s.weights = *cfg.Weights
	}
	if cfg.Dates != nil {
		s.dates = *cfg.Dates
	}
	return s
}

// TextSimilarity is the bare text score of two markets.
func (s *Scorer) TextSimilarity(a, b *models.Market) float64 {
	return s.text.Similarity(a.Text(), b.Text())
}

// Score computes the weighted sum. When either side lacks an end date the
// date term and its weight are left out, so the attainable maximum drops to
// 1 - Weights.Date; the sum is not renormalized.
func (s *Scorer) Score(a, b *models.Market) Score {
	var out Score
	title := s.TextSimilarity(a, b)
	out.Breakdown.TitleSimilarity = title
	out.Value += title * s.weights.Title
	out.Factors = append(out.Factors, fmt.Sprintf("title similarity %.2f", title))

	entityScore := entities.Compare(
		s.extractor.Extract(a.Text()),
		s.extractor.Extract(b.Text()),
		s.text.Similarity,
	)
	out.Breakdown.EntityScore = entityScore
	out.Value += entityScore * s.weights.Entity
	if entityScore > 0 {
		out.Factors = append(out.Factors, fmt.Sprintf("entity overlap %.2f", entityScore))
	}

	if s.CategoryMatch(a, b) {
		out.Breakdown.CategoryMatch = true
		out.Value += s.weights.Category
		src, dst := orient(a, b)
		out.Factors = append(out.Factors, fmt.Sprintf("category match (%s -> %s)", strings.Join(src.Tags, ","), dst.Category))
	}

	if a.HasEndDate() && b.HasEndDate() {
		months := math.Abs(a.EndDate.Sub(b.EndDate).Hours()) / hoursPerMonth
		prox := s.dates.proximity(months)
		out.Breakdown.DateProximity = prox
		out.Breakdown.HasDateProximity = true
		out.Value += prox * s.weights.Date
		out.Factors = append(out.Factors, fmt.Sprintf("end dates %.1f months apart", months))
	}

	out.Value = clamp01(out.Value)
	return out
}

// CategoryMatch maps the Polymarket side's tags onto the Kalshi side's category.
func (s *Scorer) CategoryMatch(a, b *models.Market) bool {
	src, dst := orient(a, b)
	return s.categories.Match(src.Tags, dst.Category)
}

func (d DateBands) proximity(months float64) float64 {
	switch {
	case months < d.NearMonths:
		return d.Near
	case months < d.MidMonths:
		return d.Mid
	default:
		return d.Far
	}
}

// orient returns (tag side, category side): the Polymarket market supplies
// tags and the Kalshi market supplies the target category.
func orient(a, b *models.Market) (*models.Market, *models.Market) {
	if a.Venue == models.VenueKalshi && b.Venue == models.VenuePolymarket {
		return b, a
	}
	return a, b
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
