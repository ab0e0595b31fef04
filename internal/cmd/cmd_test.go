package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hetulpatel/arbscanner/internal/config"
	"github.com/hetulpatel/arbscanner/internal/models"
	"github.com/hetulpatel/arbscanner/internal/report"
	"github.com/hetulpatel/arbscanner/internal/storage/sqlite"
)

const polymarketJSON = `[
  {
    "id": "pm-1",
    "question": "Will Trump win the 2024 election?",
    "tags": [{"slug": "elections"}],
    "outcomePrices": "[\"0.65\",\"0.35\"]",
    "endDate": "2030-01-20T00:00:00Z",
    "volume24hr": 50000,
    "active": true
  },
  {
    "id": "pm-2",
    "question": "Will it rain in Seattle tomorrow?",
    "outcomePrices": "[\"0.9\",\"0.1\"]",
    "active": true
  }
]`

const kalshiJSON = `{
  "markets": [
    {
      "ticker": "PRES-24",
      "title": "Will Trump win the 2024 election?",
      "category": "Elections",
      "last_price": 70,
      "close_time": "2030-01-20T00:00:00Z",
      "dollar_volume_24h": 20000,
      "status": "active"
    }
  ],
  "cursor": ""
}`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Defaults()
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "arb.db")
	cfg.Report.Dir = filepath.Join(t.TempDir(), "reports")
	return &cfg
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func venueServers(t *testing.T, cfg *config.Config) {
	t.Helper()
	pm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, polymarketJSON)
	}))
	kx := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, kalshiJSON)
	}))
	t.Cleanup(pm.Close)
	t.Cleanup(kx.Close)
	cfg.Polymarket.BaseURL = pm.URL
	cfg.Kalshi.BaseURL = kx.URL
}

func TestReadCatalogFile(t *testing.T) {
	pm, err := readCatalogFile(writeFile(t, "pm.json", polymarketJSON), models.VenuePolymarket)
	require.NoError(t, err)
	require.Len(t, pm, 2)
	assert.Equal(t, models.VenuePolymarket, pm[0].Venue)
	assert.InDelta(t, 0.65, pm[0].Price.Yes, 1e-9)

	kx, err := readCatalogFile(writeFile(t, "kx.json", kalshiJSON), models.VenueKalshi)
	require.NoError(t, err)
	require.Len(t, kx, 1)
	assert.Equal(t, "PRES-24", kx[0].ID)
	assert.InDelta(t, 0.70, kx[0].Price.Yes, 1e-9)

	_, err = readCatalogFile(writeFile(t, "bad.json", "not json"), models.VenueKalshi)
	assert.Error(t, err)
	_, err = readCatalogFile(filepath.Join(t.TempDir(), "missing.json"), models.VenueKalshi)
	assert.Error(t, err)
}

func TestRunScanFromFiles(t *testing.T) {
	cfg := testConfig(t)
	var out bytes.Buffer
	path, err := runScan(context.Background(), cfg, scanOptions{
		PolymarketFile: writeFile(t, "pm.json", polymarketJSON),
		KalshiFile:     writeFile(t, "kx.json", kalshiJSON),
		Profile:        report.ProfileBatch,
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, cfg.Report.Dir, filepath.Dir(path))
	assert.Contains(t, out.String(), "[arb-opportunity] id=kalshi:PRES-24|polymarket:pm-1")
	assert.Contains(t, out.String(), "wrote 1 opportunities")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var r report.Report
	require.NoError(t, json.Unmarshal(data, &r))
	assert.Equal(t, report.ProfileBatch, r.Metadata.Profile)
	assert.Equal(t, 1, r.Metadata.TotalOpportunities)
	assert.Len(t, r.Opportunities.Exact, 1)
}

func TestRunScanFromFilesSkipsClosedMarkets(t *testing.T) {
	cfg := testConfig(t)
	closed := strings.Replace(polymarketJSON, `"active": true
  },`, `"active": true,
    "closed": true
  },`, 1)
	require.NotEqual(t, polymarketJSON, closed)

	var out bytes.Buffer
	_, err := runScan(context.Background(), cfg, scanOptions{
		PolymarketFile: writeFile(t, "pm.json", closed),
		KalshiFile:     writeFile(t, "kx.json", kalshiJSON),
		Profile:        report.ProfileBatch,
	}, &out)
	require.NoError(t, err)
	assert.NotContains(t, out.String(), "polymarket:pm-1")
	assert.Contains(t, out.String(), "wrote 0 opportunities")
}

func TestRunScanRejectsBadInput(t *testing.T) {
	cfg := testConfig(t)
	var out bytes.Buffer

	_, err := runScan(context.Background(), cfg, scanOptions{Profile: report.ProfileBatch}, &out)
	assert.ErrorContains(t, err, "provide --polymarket")

	_, err = runScan(context.Background(), cfg, scanOptions{Profile: "nightly"}, &out)
	assert.Error(t, err)

	_, err = runScan(context.Background(), cfg, scanOptions{Profile: report.ProfileBatch, Strategy: "fuzzy"}, &out)
	assert.Error(t, err)

	_, err = runScan(context.Background(), cfg, scanOptions{Profile: report.ProfileBatch, Threshold: 1.5}, &out)
	assert.Error(t, err)
}

func TestFetchStoreThenScanFromDB(t *testing.T) {
	cfg := testConfig(t)
	venueServers(t, cfg)
	var out bytes.Buffer

	paths, err := runFetch(context.Background(), cfg, t.TempDir(), true, &out)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Contains(t, out.String(), "polymarket: 2 markets")
	assert.Contains(t, out.String(), "kalshi: 1 markets")

	// The dumped files load back through the file path.
	pm, err := readCatalogFile(paths[0], models.VenuePolymarket)
	require.NoError(t, err)
	assert.Len(t, pm, 2)

	out.Reset()
	_, err = runScan(context.Background(), cfg, scanOptions{
		FromDB:  true,
		Profile: report.ProfileLive,
		Record:  true,
		Quiet:   true,
	}, &out)
	require.NoError(t, err)
	assert.NotContains(t, out.String(), "[arb-opportunity]")
	assert.Contains(t, out.String(), "wrote 1 opportunities")

	store, err := sqlite.Open(cfg.SQLite.Path)
	require.NoError(t, err)
	defer store.Close()

	out.Reset()
	require.NoError(t, printRecent(context.Background(), store, 10, &out))
	assert.Contains(t, out.String(), "kalshi:PRES-24|polymarket:pm-1")
	assert.Contains(t, out.String(), report.ProfileLive)
}

func TestRunScanWithFetch(t *testing.T) {
	cfg := testConfig(t)
	venueServers(t, cfg)
	var out bytes.Buffer

	_, err := runScan(context.Background(), cfg, scanOptions{Fetch: true, Profile: report.ProfileBatch}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "wrote 1 opportunities")
}

func TestWriteConfigRedactsSecrets(t *testing.T) {
	cfg := config.Defaults()
	cfg.LLM.APIKey = "sk-secret"
	cfg.Redis.Password = "hunter2"

	var out bytes.Buffer
	require.NoError(t, writeConfig(&out, cfg))
	assert.NotContains(t, out.String(), "sk-secret")
	assert.NotContains(t, out.String(), "hunter2")
	assert.Equal(t, "sk-secret", cfg.LLM.APIKey)

	var decoded config.Config
	_, err := toml.Decode(out.String(), &decoded)
	require.NoError(t, err)
	assert.Equal(t, cfg.Kalshi.BaseURL, decoded.Kalshi.BaseURL)
	assert.Equal(t, cfg.Engine.Interval, decoded.Engine.Interval)
	assert.Equal(t, "***", decoded.LLM.APIKey)
}
