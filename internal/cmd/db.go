package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hetulpatel/arbscanner/internal/storage/sqlite"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the SQLite catalog and opportunity store",
}

var dbCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create the markets and arb_opportunities tables",
	RunE:  withStore(func(ctx context.Context, s *sqlite.Store, out io.Writer) error { return s.CreateTables(ctx) }),
}

var dbDropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Drop every table",
	RunE:  withStore(func(ctx context.Context, s *sqlite.Store, out io.Writer) error { return s.DropTables(ctx) }),
}

var dbClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all rows but keep the schema",
	RunE:  withStore(func(ctx context.Context, s *sqlite.Store, out io.Writer) error { return s.ClearTables(ctx) }),
}

var dbRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List the most recently recorded opportunities",
	RunE: withStore(func(ctx context.Context, s *sqlite.Store, out io.Writer) error {
		return printRecent(ctx, s, recentLimit, out)
	}),
}

var recentLimit int

func init() {
	dbRecentCmd.Flags().IntVar(&recentLimit, "limit", 20, "Number of rows to show")

	dbCmd.AddCommand(dbCreateCmd)
	dbCmd.AddCommand(dbDropCmd)
	dbCmd.AddCommand(dbClearCmd)
	dbCmd.AddCommand(dbRecentCmd)
}

// DBCommand returns the db command for registration
func DBCommand() *cobra.Command {
	return dbCmd
}

func withStore(fn func(context.Context, *sqlite.Store, io.Writer) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := fn(cmd.Context(), store, cmd.OutOrStdout()); err != nil {
			return fmt.Errorf("%s: %w", cmd.Name(), err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%s)\n", cmd.Name(), store.Path())
		return nil
	}
}

func printRecent(ctx context.Context, s *sqlite.Store, limit int, out io.Writer) error {
	rows, err := s.RecentOpportunities(ctx, limit)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RECORDED\tPROFILE\tPAIR\tSIDE\tPROFIT\tRISK\tCONF")
	for _, r := range rows {
		o := r.Opportunity
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.4f\t%s\t%.2f\n",
			r.RecordedAt.Format("2006-01-02 15:04:05"), r.Profile, o.ID, o.Side, o.ProfitPotential, o.RiskLevel, o.Confidence)
	}
	return w.Flush()
}
