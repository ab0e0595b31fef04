package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/hetulpatel/arbscanner/internal/collectors"
	"github.com/hetulpatel/arbscanner/internal/config"
	"github.com/hetulpatel/arbscanner/internal/logging"
	"github.com/hetulpatel/arbscanner/internal/matcher"
	"github.com/hetulpatel/arbscanner/internal/matches"
	"github.com/hetulpatel/arbscanner/internal/models"
	"github.com/hetulpatel/arbscanner/internal/report"
	"github.com/hetulpatel/arbscanner/internal/scanner"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Match the two catalogs and write an arbitrage report",
	Long: `Match a Polymarket catalog against a Kalshi catalog, price every matched
pair and write a JSON report grouped by match quality.

Catalogs come from raw JSON files (--polymarket and --kalshi), a live
fetch (--fetch) or the last stored snapshot (--from-db).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		_, err = runScan(cmd.Context(), cfg, scanOpts, cmd.OutOrStdout())
		return err
	},
}

type scanOptions struct {
	PolymarketFile string
	KalshiFile     string
	Fetch          bool
	FromDB         bool
	Profile        string
	Strategy       string
	Threshold      float64
	OutDir         string
	Record         bool
	Quiet          bool
}

var scanOpts scanOptions

func init() {
	f := scanCmd.Flags()
	f.StringVar(&scanOpts.PolymarketFile, "polymarket", "", "Raw Polymarket catalog JSON file")
	f.StringVar(&scanOpts.KalshiFile, "kalshi", "", "Raw Kalshi catalog JSON file")
	f.BoolVar(&scanOpts.Fetch, "fetch", false, "Fetch both catalogs from the venue APIs")
	f.BoolVar(&scanOpts.FromDB, "from-db", false, "Scan the catalogs stored in SQLite")
	f.StringVar(&scanOpts.Profile, "profile", report.ProfileBatch, "Profile: batch or live")
	f.StringVar(&scanOpts.Strategy, "strategy", "", "Override the profile's matching strategy (weighted|text)")
	f.Float64Var(&scanOpts.Threshold, "threshold", 0, "Override the profile's match threshold")
	f.StringVar(&scanOpts.OutDir, "out", "", "Report directory (default from config)")
	f.BoolVar(&scanOpts.Record, "record", false, "Also record the opportunities in SQLite")
	f.BoolVar(&scanOpts.Quiet, "quiet", false, "Do not print the opportunity summary")
}

// ScanCommand returns the scan command for registration
func ScanCommand() *cobra.Command {
	return scanCmd
}

// runScan returns the path of the written report.
func runScan(ctx context.Context, cfg *config.Config, opts scanOptions, out io.Writer) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	profile, err := cfg.Profile(opts.Profile)
	if err != nil {
		return "", err
	}
	if opts.Strategy != "" {
		strategy, err := matcher.ParseStrategy(opts.Strategy)
		if err != nil {
			return "", err
		}
		if strategy != profile.Strategy {
			profile.Strategy = strategy
			profile.MatchThreshold = matcher.DefaultThreshold(strategy)
		}
	}
	if opts.Threshold != 0 {
		profile.MatchThreshold = opts.Threshold
	}
	if err := profile.Validate(); err != nil {
		return "", err
	}

	poly, kx, err := loadCatalogs(ctx, cfg, opts)
	if err != nil {
		return "", err
	}

	rdb := openRedis(ctx, cfg)
	if rdb != nil {
		defer rdb.Close()
	}
	s, err := scanner.New(scanner.Options{Config: cfg, Profile: profile, Redis: rdb})
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	opps, err := s.Scan(ctx, poly, kx, now)
	if err != nil {
		return "", err
	}

	dir := opts.OutDir
	if dir == "" {
		dir = cfg.Report.Dir
	}
	path, err := report.WriteFile(dir, report.Build(opps, profile, now))
	if err != nil {
		return "", err
	}

	if opts.Record {
		if err := recordOpportunities(ctx, cfg, profile.Name, opps, now); err != nil {
			return path, err
		}
	}
	if !opts.Quiet {
		report.PrintSummary(out, opps)
	}
	fmt.Fprintf(out, "wrote %d opportunities to %s\n", len(opps), path)
	return path, nil
}

func loadCatalogs(ctx context.Context, cfg *config.Config, opts scanOptions) (poly, kx []models.Market, err error) {
	switch {
	case opts.Fetch:
		catalogs, _ := collectors.FetchAll(ctx, venueSources(cfg))
		poly, kx = scanner.Split(catalogs)
		return poly, kx, nil
	case opts.FromDB:
		store, err := openStore(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		defer store.Close()
		pc, err := store.LoadCatalog(ctx, models.VenuePolymarket)
		if err != nil {
			return nil, nil, fmt.Errorf("load polymarket catalog: %w", err)
		}
		kc, err := store.LoadCatalog(ctx, models.VenueKalshi)
		if err != nil {
			return nil, nil, fmt.Errorf("load kalshi catalog: %w", err)
		}
		poly, kx = scanner.Split([]models.Catalog{pc, kc})
		return poly, kx, nil
	case opts.PolymarketFile != "" && opts.KalshiFile != "":
		if poly, err = readCatalogFile(opts.PolymarketFile, models.VenuePolymarket); err != nil {
			return nil, nil, err
		}
		if kx, err = readCatalogFile(opts.KalshiFile, models.VenueKalshi); err != nil {
			return nil, nil, err
		}
		poly, kx = scanner.Split([]models.Catalog{
			models.NewCatalog(models.VenuePolymarket, poly, time.Time{}),
			models.NewCatalog(models.VenueKalshi, kx, time.Time{}),
		})
		return poly, kx, nil
	default:
		return nil, nil, fmt.Errorf("scan: provide --polymarket and --kalshi files, --fetch, or --from-db")
	}
}

func recordOpportunities(ctx context.Context, cfg *config.Config, profile string, opps []matches.Opportunity, at time.Time) error {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	for i := range opps {
		if err := store.InsertOpportunity(ctx, profile, &opps[i], at); err != nil {
			return fmt.Errorf("record %s: %w", opps[i].ID, err)
		}
	}
	logging.Infof("[arbscan] recorded %d opportunities in %s", len(opps), store.Path())
	return nil
}
