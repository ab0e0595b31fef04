// Package report ranks, buckets and serializes arbitrage opportunities.
package report

import (
	"fmt"
	"strings"

	"github.com/hetulpatel/arbscanner/internal/matcher"
)

// SortKey is the primary descending sort of a ranked list.
type SortKey string

const (
	SortBySimilarity SortKey = "similarity"
	SortByProfit     SortKey = "profit"
)

func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(strings.ToLower(strings.TrimSpace(s))) {
	case SortBySimilarity:
		return SortBySimilarity, nil
	case SortByProfit:
		return SortByProfit, nil
	default:
		return "", fmt.Errorf("report: unknown sort key %q", s)
	}
}

// Thresholds are the similarity cut points of the four buckets.
type Thresholds struct {
	Exact  float64 `json:"exact" toml:"exact"`
	High   float64 `json:"high" toml:"high"`
	Medium float64 `json:"medium" toml:"medium"`
	Low    float64 `json:"low" toml:"low"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{Exact: 0.95, High: 0.80, Medium: 0.60, Low: 0.40}
}

// Profile bundles the settings of one call site. The batch report and the
// live engine rank differently and keep separate profiles.
type Profile struct {
	Name           string
	Strategy       matcher.Strategy
	MatchThreshold float64
	// MinProfit drops opportunities below it when ranking; 0 keeps all.
	MinProfit float64
	SortBy    SortKey
	Buckets   Thresholds
}

const (
	ProfileBatch = "batch"
	ProfileLive  = "live"
)

// BatchProfile ranks by similarity and buckets for the offline report.
func BatchProfile() Profile {
	return Profile{
		Name:           ProfileBatch,
		Strategy:       matcher.StrategyWeighted,
		MatchThreshold: matcher.DefaultThreshold(matcher.StrategyWeighted),
		SortBy:         SortBySimilarity,
		Buckets:        DefaultThresholds(),
	}
}

// LiveProfile ranks by profit and cuts below one cent of edge.
func LiveProfile() Profile {
	return Profile{
		Name:           ProfileLive,
		Strategy:       matcher.StrategyText,
		MatchThreshold: matcher.DefaultThreshold(matcher.StrategyText),
		MinProfit:      0.01,
		SortBy:         SortByProfit,
		Buckets:        DefaultThresholds(),
	}
}

func ProfileByName(name string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case ProfileBatch, "":
		return BatchProfile(), nil
	case ProfileLive:
		return LiveProfile(), nil
	default:
		return Profile{}, fmt.Errorf("report: unknown profile %q", name)
	}
}

// Validate checks ranges and names.
func (p Profile) Validate() error {
	if _, err := matcher.ParseStrategy(string(p.Strategy)); err != nil {
		return fmt.Errorf("profile %s: %w", p.Name, err)
	}
	if _, err := ParseSortKey(string(p.SortBy)); err != nil {
		return fmt.Errorf("profile %s: %w", p.Name, err)
	}
	for name, v := range map[string]float64{
		"match_threshold": p.MatchThreshold,
		"min_profit":      p.MinProfit,
		"buckets.exact":   p.Buckets.Exact,
		"buckets.high":    p.Buckets.High,
		"buckets.medium":  p.Buckets.Medium,
		"buckets.low":     p.Buckets.Low,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("profile %s: %s %.4f outside [0,1]", p.Name, name, v)
		}
	}
	b := p.Buckets
	if !(b.Exact >= b.High && b.High >= b.Medium && b.Medium >= b.Low) {
		return fmt.Errorf("profile %s: bucket cut points must be non-increasing", p.Name)
	}
	return nil
}
