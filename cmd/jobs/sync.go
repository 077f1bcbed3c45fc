package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var syncAllCmd = &cobra.Command{
	Use:   "sync-all",
	Short: "Crawl every configured area and mirror its entries",
	Long:  "Searches each area cell by cell, fetches all visible entries and upserts them into Postgres.",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.close()

		ctx, cancel := runCtx(cmd)
		defer cancel()

		stats, err := rt.sync.SyncAll(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Update completed. Total entries upserted: %d from %d/%d areas. Elapsed time: %s\n",
			stats.Upserted, stats.Areas-stats.FailedAreas, stats.Areas, stats.Elapsed.Round(time.Second))
		return nil
	},
}

var syncRecentCmd = &cobra.Command{
	Use:   "sync-recent",
	Short: "Mirror recently changed entries",
	Long:  "Pulls the recently-changed feed for the configured lookback window and upserts the result.",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.close()

		ctx, cancel := runCtx(cmd)
		defer cancel()

		n, err := rt.sync.SyncRecent(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Upserted %d recently changed entries.\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncAllCmd)
	rootCmd.AddCommand(syncRecentCmd)
}
