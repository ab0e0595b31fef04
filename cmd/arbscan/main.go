package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hetulpatel/arbscanner/internal/cmd"
	"github.com/hetulpatel/arbscanner/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "arbscan",
	Short: "Cross-venue prediction market arbitrage scanner",
	Long: `arbscan matches equivalent Polymarket and Kalshi markets, prices every
matched pair and reports the arbitrage opportunities between them.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cmd.ConfigFile, "config", "c", "", "TOML config file (defaults, .env and ARB_* variables apply without one)")

	rootCmd.AddCommand(cmd.ScanCommand())
	rootCmd.AddCommand(cmd.FetchCommand())
	rootCmd.AddCommand(cmd.DBCommand())
	rootCmd.AddCommand(cmd.ConfigCommand())
}

func main() {
	logging.InitFromEnv()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
