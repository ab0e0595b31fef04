package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hetulpatel/arbscanner/internal/matcher"
	"github.com/hetulpatel/arbscanner/internal/matches"
)

func opp(id string, sim, profit float64) matches.Opportunity {
	return matches.Opportunity{ID: id, SimilarityScore: sim, ProfitPotential: profit, Warnings: []string{}}
}

func ids(opps []matches.Opportunity) []string {
	out := make([]string, 0, len(opps))
	for _, o := range opps {
		out = append(out, o.ID)
	}
	return out
}

func sample() []matches.Opportunity {
	return []matches.Opportunity{
		opp("a", 0.62, 0.20),
		opp("b", 0.97, 0.005),
		opp("c", 0.85, 0.03),
		opp("d", 0.30, 0.50),
		opp("e", 0.85, 0.08),
		opp("f", 0.45, 0.02),
	}
}

func TestProfilesStayDistinct(t *testing.T) {
	batch, live := BatchProfile(), LiveProfile()
	assert.Equal(t, SortBySimilarity, batch.SortBy)
	assert.Equal(t, SortByProfit, live.SortBy)
	assert.Zero(t, batch.MinProfit)
	assert.Equal(t, 0.01, live.MinProfit)
	assert.Equal(t, matcher.StrategyWeighted, batch.Strategy)
	assert.Equal(t, matcher.StrategyText, live.Strategy)
	assert.Equal(t, Thresholds{Exact: 0.95, High: 0.80, Medium: 0.60, Low: 0.40}, batch.Buckets)
	require.NoError(t, batch.Validate())
	require.NoError(t, live.Validate())

	p, err := ProfileByName("LIVE")
	require.NoError(t, err)
	assert.Equal(t, ProfileLive, p.Name)
	_, err = ProfileByName("nightly")
	assert.Error(t, err)
}

func TestProfileValidate(t *testing.T) {
	p := BatchProfile()
	p.Buckets.High = 0.99
	assert.Error(t, p.Validate())

	p = BatchProfile()
	p.MatchThreshold = 1.2
	assert.Error(t, p.Validate())

	p = BatchProfile()
	p.SortBy = "volume"
	assert.Error(t, p.Validate())
}

func TestRankBatchSortsBySimilarity(t *testing.T) {
	in := sample()
	got := Rank(in, BatchProfile())
	assert.Equal(t, []string{"b", "c", "e", "a", "f", "d"}, ids(got))
	assert.Equal(t, "a", in[0].ID)
}

func TestRankLiveSortsByProfitAndCuts(t *testing.T) {
	got := Rank(sample(), LiveProfile())
	assert.Equal(t, []string{"d", "a", "e", "c", "f"}, ids(got))
}

func TestBucket(t *testing.T) {
	b := Bucket(Rank(sample(), BatchProfile()), DefaultThresholds())
	assert.Equal(t, []string{"b"}, ids(b.Exact))
	assert.Equal(t, []string{"c", "e"}, ids(b.High))
	assert.Equal(t, []string{"a"}, ids(b.Medium))
	assert.Equal(t, []string{"f"}, ids(b.Low))
	assert.Equal(t, Counts{Exact: 1, High: 2, Medium: 1, Low: 1}, b.Counts())

	edge := Bucket([]matches.Opportunity{opp("x", 0.95, 0.1), opp("y", 0.80, 0.1), opp("z", 0.3999, 0.1)}, DefaultThresholds())
	assert.Equal(t, []string{"x"}, ids(edge.Exact))
	assert.Equal(t, []string{"y"}, ids(edge.High))
	assert.Equal(t, 2, edge.Counts().Total())
}

func TestBuildAndWriteFile(t *testing.T) {
	at := time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)
	r := Build(sample(), BatchProfile(), at)
	assert.Equal(t, 5, r.Metadata.TotalOpportunities)
	assert.NotEmpty(t, r.Metadata.RunID)
	assert.Equal(t, "arbitrage-report-2025-02-03T04-05-06Z.json", r.Filename())

	dir := filepath.Join(t.TempDir(), "reports")
	path, err := WriteFile(dir, r)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, r.Filename()), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"metadata\": {")

	var decoded map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "2025-02-03T04:05:06Z", decoded["metadata"]["generatedAt"])
	assert.EqualValues(t, 5, decoded["metadata"]["totalOpportunities"])
	for _, k := range []string{"exact", "high", "medium", "low"} {
		assert.Contains(t, decoded["opportunities"], k)
	}
}

func TestBuildEmpty(t *testing.T) {
	r := Build(nil, BatchProfile(), time.Now())
	data, err := json.Marshal(r.Opportunities)
	require.NoError(t, err)
	assert.JSONEq(t, `{"exact":[],"high":[],"medium":[],"low":[]}`, string(data))
	assert.Zero(t, r.Metadata.TotalOpportunities)
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, []matches.Opportunity{opp("kalshi:K|polymarket:P", 0.9, 0.05)})
	assert.Contains(t, buf.String(), "[arb-opportunity] id=kalshi:K|polymarket:P")
	assert.Contains(t, buf.String(), "profit=0.0500")
}
