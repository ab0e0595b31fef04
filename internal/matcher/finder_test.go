package matcher

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hetulpatel/arbscanner/internal/categories"
	"github.com/hetulpatel/arbscanner/internal/models"
)

func sampleCatalogs() ([]models.Market, []models.Market) {
	a := []models.Market{
		polyMarket("p1", "Fed rate cut in March 2025?", []string{"fed"}, time.Time{}),
		polyMarket("p2", "Lakers win the NBA championship?", []string{"sports"}, time.Time{}),
	}
	b := []models.Market{
		kalshiMarket("k1", "Fed rate cut in March 2025?", "Economics", time.Time{}),
		kalshiMarket("k2", "Will it snow in Denver tomorrow?", "Climate and Weather", time.Time{}),
	}
	return a, b
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, StrategyWeighted, s)

	s, err = ParseStrategy(" TEXT ")
	require.NoError(t, err)
	assert.Equal(t, StrategyText, s)

	_, err = ParseStrategy("embedding")
	assert.Error(t, err)
}

func TestNewFinderDefaults(t *testing.T) {
	f, err := NewFinder(Config{Strategy: StrategyText})
	require.NoError(t, err)
	assert.Equal(t, 0.6, f.Threshold())

	f, err = NewFinder(Config{})
	require.NoError(t, err)
	assert.Equal(t, StrategyWeighted, f.Strategy())
	assert.Equal(t, 0.4, f.Threshold())

	_, err = NewFinder(Config{PreliminaryFloor: 1.5})
	assert.Error(t, err)
}

func TestFindWeighted(t *testing.T) {
	a, b := sampleCatalogs()
	f, err := NewFinder(Config{})
	require.NoError(t, err)

	got := f.Find(a, b)
	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].A.ID)
	assert.Equal(t, "k1", got[0].B.ID)
	assert.InDelta(t, 0.9, got[0].Similarity, 1e-9)
	assert.True(t, got[0].Breakdown.CategoryMatch)
}

func TestFindText(t *testing.T) {
	a, b := sampleCatalogs()
	f, err := NewFinder(Config{Strategy: StrategyText})
	require.NoError(t, err)

	got := f.Find(a, b)
	require.Len(t, got, 1)
	assert.Equal(t, 1.0, got[0].Similarity)
	assert.False(t, got[0].Breakdown.CategoryMatch)
}

func TestFindEmptyInputs(t *testing.T) {
	f, err := NewFinder(Config{})
	require.NoError(t, err)
	a, _ := sampleCatalogs()

	got := f.Find(a, nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Empty(t, f.Find(nil, a))
}

func generated(venue models.Venue, n int) []models.Market {
	out := make([]models.Market, n)
	for i := range out {
		out[i] = models.Market{
			Venue:    venue,
			ID:       fmt.Sprintf("%s-%d", venue, i),
			Question: fmt.Sprintf("Will candidate number%d win the election in state%d", i%4, i%3),
			Tags:     []string{"elections"},
			Category: "Elections",
		}
	}
	return out
}

func TestFindIsDeterministicAcrossWorkerCounts(t *testing.T) {
	a := generated(models.VenuePolymarket, 40)
	b := generated(models.VenueKalshi, 40)

	serial, err := NewFinder(Config{Workers: 1})
	require.NoError(t, err)
	parallel, err := NewFinder(Config{Workers: 8})
	require.NoError(t, err)

	want := serial.Find(a, b)
	require.NotEmpty(t, want)
	assert.Equal(t, want, parallel.Find(a, b))

	for i := 1; i < len(want); i++ {
		assert.GreaterOrEqual(t, want[i-1].Similarity, want[i].Similarity)
	}
}

func TestFindWithBlockers(t *testing.T) {
	a, b := sampleCatalogs()
	b[0].Category = "Sports"
	f, err := NewFinder(Config{Pairs: Filtered(CategoryBlocker{Mapper: categories.NewMapper(categories.DefaultTable())})})
	require.NoError(t, err)
	assert.Empty(t, f.Find(a, b))
}

func TestPairSources(t *testing.T) {
	a, b := sampleCatalogs()
	n := 0
	for range (CrossProduct{}).Pairs(a, b) {
		n++
	}
	assert.Equal(t, 4, n)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	a[0].EndDate = base
	b[0].EndDate = base.Add(48 * time.Hour)
	b[1].EndDate = base.Add(90 * 24 * time.Hour)
	blocker := EndDateBlocker{Window: 7 * 24 * time.Hour}
	assert.True(t, blocker.Keep(&a[0], &b[0]))
	assert.False(t, blocker.Keep(&a[0], &b[1]))
	assert.True(t, blocker.Keep(&a[1], &b[1]))

	var kept []string
	for p := range Filtered(blocker).Pairs(a, b) {
		kept = append(kept, a[p.A].ID+"/"+b[p.B].ID)
	}
	assert.Equal(t, []string{"p1/k1", "p2/k1", "p2/k2"}, kept)
}

func TestLoggerAppendsMatches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matches.log")
	a, b := sampleCatalogs()
	f, err := NewFinder(Config{Logger: NewLogger(LogModeSummary, path)})
	require.NoError(t, err)
	require.Len(t, f.Find(a, b), 1)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)
	var entry logEntry
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.InDelta(t, 0.9, entry.Similarity, 1e-9)
	assert.Equal(t, "p1", entry.A.ID)
}

func TestParseLogMode(t *testing.T) {
	assert.Equal(t, LogModeVerbose, ParseLogMode("Verbose"))
	assert.Equal(t, LogModeSummary, ParseLogMode("summary"))
	assert.Equal(t, LogModeQuiet, ParseLogMode("nope"))
	var l *Logger
	assert.False(t, l.Enabled())
}
