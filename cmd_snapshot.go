package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ottawa-housing/scraper/snapshot"
)

var (
	snapshotURL string
	snapshotOut string
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Capture PNG screenshots of a running dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		if snapshotURL != "" {
			cfg.DashboardURL = snapshotURL
		}
		if snapshotOut != "" {
			cfg.SnapshotDir = snapshotOut
		}

		capturer := snapshot.New(cfg, logger)
		paths, err := capturer.Capture(cmd.Context(), snapshot.DefaultPages)
		if err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
		logger.Info("Saved %d snapshots to %s", len(paths), cfg.SnapshotDir)
		return nil
	},
}

func init() {
	snapshotCmd.Flags().StringVar(&snapshotURL, "url", "", "dashboard base URL (default DASHBOARD_URL)")
	snapshotCmd.Flags().StringVar(&snapshotOut, "out", "", "output directory (default SNAPSHOT_DIR)")
}
