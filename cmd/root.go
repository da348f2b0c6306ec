package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aerocell/towersync/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "towersync",
	Short: "Tower lead ingestion and search sync",
	Long:  "Imports tower lead CSVs into Postgres with entity resolution and proximity dedup, and materializes denormalized Meilisearch documents for search.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
