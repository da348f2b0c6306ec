package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aerocell/towersync/internal/migrate"
	"github.com/aerocell/towersync/internal/provider"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Manage the provider directory",
}

var providersSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the canonical provider directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		pool, err := dbPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := migrate.Migrate(ctx, pool); err != nil {
			return err
		}

		created, err := provider.Seed(ctx, pool, provider.SeedNames)
		if err != nil {
			return err
		}

		fmt.Printf("Seeded %d providers (%d already present)\n",
			created, int64(len(provider.SeedNames))-created)
		return nil
	},
}

func init() {
	providersCmd.AddCommand(providersSeedCmd)
	rootCmd.AddCommand(providersCmd)
}
