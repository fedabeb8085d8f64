package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ottawa-housing/config"
	"ottawa-housing/storage"
	"ottawa-housing/utils"
)

var (
	verbose bool

	cfg    *config.Config
	logger *utils.Logger
)

var rootCmd = &cobra.Command{
	Use:   "ottawa-housing",
	Short: "Ottawa housing market tracker",
	Long: `Scrapes the weekly Ottawa real estate market reviews, stores the
freehold and condo figures and serves them as a dashboard.

Run without arguments to scrape.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = utils.NewLogger(verbose)
		cfg = config.Load()
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScrape(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(scrapeCmd, serveCmd, snapshotCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openStore(ctx context.Context) (*storage.SQLStore, error) {
	logger.Info("Connecting to %s store", cfg.StoreDriver)
	store, err := storage.Open(ctx, cfg.StoreDriver, cfg.DSN())
	if err != nil {
		if cfg.StoreDriver == "postgres" {
			logger.Error("Make sure Docker is running: docker compose up -d")
		}
		return nil, fmt.Errorf("open store: %w", err)
	}
	return store, nil
}
