package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ottawa-housing/scraper/reddit"
	"ottawa-housing/services"
	"ottawa-housing/storage"
)

var (
	scrapeMaxPosts int
	scrapeCutoff   string
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Fetch new weekly reviews and store their figures",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("max-posts") {
			cfg.MaxPosts = scrapeMaxPosts
		}
		if cmd.Flags().Changed("cutoff") {
			cfg.CutoffDate = scrapeCutoff
		}
		return runScrape(cmd.Context())
	},
}

func init() {
	scrapeCmd.Flags().IntVar(&scrapeMaxPosts, "max-posts", 0, "process at most this many posts (0 = all)")
	scrapeCmd.Flags().StringVar(&scrapeCutoff, "cutoff", "", "ignore posts created before this date (YYYY-MM-DD)")
}

func runScrape(ctx context.Context) error {
	logger.Info("=== Ottawa housing scraper starting ===")
	logger.Info("Config: user %s | cutoff %s | max posts %d | concurrency %d | rate %dms",
		cfg.RedditUser, cfg.CutoffDate, cfg.MaxPosts, cfg.MaxConcurrency, cfg.RateLimitMs)

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	csvWriter, err := storage.NewCSVWriter(cfg.CSVOutputPath)
	if err != nil {
		return fmt.Errorf("create CSV writer: %w", err)
	}
	defer csvWriter.Close()

	client := reddit.New(cfg, logger)
	if err := client.VerifyProxy(ctx); err != nil {
		return fmt.Errorf("proxy check: %w", err)
	}

	svc := services.NewIngestService(client, store, csvWriter, services.IngestOptions{
		Cutoff:      cfg.Cutoff(),
		MaxPosts:    cfg.MaxPosts,
		Concurrency: cfg.MaxConcurrency,
	}, logger)

	start := time.Now()
	res, err := svc.Run(ctx)
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}

	logger.Info("=== Done in %s: fetched %d | matched %d | stored %d | skipped %d | failed %d ===",
		time.Since(start).Round(time.Millisecond), res.Fetched, res.Matched, res.Processed, res.Skipped, res.Failed)
	logger.Info("Raw posts saved to %s", cfg.CSVOutputPath)
	return nil
}
