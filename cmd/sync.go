package main

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aerocell/towersync/internal/search"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync documents to Meilisearch",
}

var syncFullCmd = &cobra.Command{
	Use:   "full",
	Short: "Rebuild every search document",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		pool, err := dbPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		engine := search.NewEngine(pool, meiliClient(), cfg.Sync.BatchSize, cfg.Sync.MaxConcurrency, zap.L())
		stats, err := engine.FullSync(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("Full sync complete: %d towers, %d entities\n", stats.Towers, stats.Entities)
		return nil
	},
}

var syncIncrementalCmd = &cobra.Command{
	Use:   "incremental",
	Short: "Sync documents changed since the last successful run",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		sinceFlag, _ := cmd.Flags().GetString("since")
		var since time.Time
		if sinceFlag != "" {
			var err error
			since, err = time.Parse(time.RFC3339, sinceFlag)
			if err != nil {
				return eris.Wrapf(err, "sync: parse --since %q (want RFC3339)", sinceFlag)
			}
		}

		pool, err := dbPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		engine := search.NewEngine(pool, meiliClient(), cfg.Sync.BatchSize, cfg.Sync.MaxConcurrency, zap.L())
		var stats search.Stats
		if sinceFlag != "" {
			stats, err = engine.IncrementalSyncFrom(ctx, since)
		} else {
			stats, err = engine.IncrementalSync(ctx)
		}
		if err != nil {
			return err
		}

		fmt.Printf("Incremental sync complete: %d towers, %d entities\n", stats.Towers, stats.Entities)
		return nil
	},
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync run history",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		pool, err := dbPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		entries, err := search.NewSyncLog(pool).ListAll(ctx)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No sync runs recorded")
			return nil
		}

		for _, e := range entries {
			line := fmt.Sprintf("%d  %-12s %-8s started=%s rows=%d",
				e.ID, e.Target, e.Status, e.StartedAt.Format("2006-01-02 15:04:05"), e.RowsSynced)
			if e.Error != "" {
				line += "  error=" + e.Error
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	syncIncrementalCmd.Flags().String("since", "", "override the sync watermark (RFC3339)")
	syncCmd.AddCommand(syncFullCmd, syncIncrementalCmd, syncStatusCmd)
	rootCmd.AddCommand(syncCmd)
}
