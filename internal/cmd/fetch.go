package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hetulpatel/arbscanner/internal/config"
	"github.com/hetulpatel/arbscanner/internal/kalshi"
	"github.com/hetulpatel/arbscanner/internal/models"
	"github.com/hetulpatel/arbscanner/internal/polymarket"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download both raw catalogs for offline scans",
	Long: `Fetch the open markets of both venues and write them as raw JSON files
that "arbscan scan --polymarket ... --kalshi ..." can load later.

With --store the projected markets are also upserted into SQLite.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		_, err = runFetch(cmd.Context(), cfg, fetchDir, fetchStore, cmd.OutOrStdout())
		return err
	},
}

var (
	fetchDir   string
	fetchStore bool
)

func init() {
	fetchCmd.Flags().StringVar(&fetchDir, "out", "catalogs", "Directory for the raw catalog files")
	fetchCmd.Flags().BoolVar(&fetchStore, "store", false, "Also upsert the projected markets into SQLite")
}

// FetchCommand returns the fetch command for registration
func FetchCommand() *cobra.Command {
	return fetchCmd
}

// runFetch returns the written file paths, Polymarket first. Both venues must
// succeed; a partial dump would silently skew later scans.
func runFetch(ctx context.Context, cfg *config.Config, dir string, store bool, out io.Writer) ([]string, error) {
	var (
		pm []polymarket.Market
		kx []kalshi.Market
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		pm, err = polymarket.NewClient(cfg.PolymarketClient()).FetchRaw(gctx, cfg.Polymarket.FetchOptions())
		return err
	})
	g.Go(func() error {
		var err error
		kx, err = kalshi.NewClient(cfg.KalshiClient()).FetchRaw(gctx, cfg.Kalshi.FetchOptions())
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch catalogs: %w", err)
	}

	now := time.Now().UTC()
	pmPath, err := writeCatalogFile(dir, models.VenuePolymarket, pm, now)
	if err != nil {
		return nil, err
	}
	kxPath, err := writeCatalogFile(dir, models.VenueKalshi, kx, now)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "polymarket: %d markets -> %s\n", len(pm), pmPath)
	fmt.Fprintf(out, "kalshi: %d markets -> %s\n", len(kx), kxPath)

	if store {
		s, err := openStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		defer s.Close()
		if err := s.UpsertMarkets(ctx, polymarket.ProjectAll(pm), now); err != nil {
			return nil, fmt.Errorf("store polymarket catalog: %w", err)
		}
		if err := s.UpsertMarkets(ctx, kalshi.ProjectAll(kx), now); err != nil {
			return nil, fmt.Errorf("store kalshi catalog: %w", err)
		}
	}
	return []string{pmPath, kxPath}, nil
}
