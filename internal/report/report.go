package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/hetulpatel/arbscanner/internal/matches"
)

type Metadata struct {
	GeneratedAt        time.Time  `json:"generatedAt"`
	RunID              string     `json:"runId"`
	Profile            string     `json:"profile"`
	TotalOpportunities int        `json:"totalOpportunities"`
	Categories         Counts     `json:"categories"`
	Thresholds         Thresholds `json:"thresholds"`
}

// Report is the batch output document.
type Report struct {
	Metadata      Metadata `json:"metadata"`
	Opportunities Buckets  `json:"opportunities"`
}

// Build ranks and buckets opportunities under p.
func Build(opps []matches.Opportunity, p Profile, generatedAt time.Time) Report {
	buckets := Bucket(Rank(opps, p), p.Buckets)
	counts := buckets.Counts()
	return Report{
		Metadata: Metadata{
			GeneratedAt:        generatedAt.UTC(),
			RunID:              uuid.NewString(),
			Profile:            p.Name,
			TotalOpportunities: counts.Total(),
			Categories:         counts,
			Thresholds:         p.Buckets,
		},
		Opportunities: buckets,
	}
}

const filenameLayout = "2006-01-02T15-04-05Z"

// Filename is arbitrage-report-<UTC timestamp>.json.
func (r Report) Filename() string {
	return fmt.Sprintf("arbitrage-report-%s.json", r.Metadata.GeneratedAt.UTC().Format(filenameLayout))
}

// WriteFile writes the report as indented JSON into dir and returns the path.
func WriteFile(dir string, r Report) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("report: create dir: %w", err)
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("report: marshal: %w", err)
	}
	path := filepath.Join(dir, r.Filename())
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("report: write %s: %w", path, err)
	}
	return path, nil
}

// PrintSummary writes one line per opportunity.
func PrintSummary(w io.Writer, opps []matches.Opportunity) {
	for _, o := range opps {
		fmt.Fprintf(w, "[arb-opportunity] id=%s side=%s direction=%s profit=%.4f sim=%.3f risk=%s conf=%.3f tte=%.1fd warnings=%d\n",
			o.ID, o.Side, o.Direction, o.ProfitPotential, o.SimilarityScore, o.RiskLevel, o.Confidence, o.TimeToExpiry, len(o.Warnings))
	}
}
