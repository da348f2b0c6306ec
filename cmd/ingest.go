package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aerocell/towersync/internal/adapter"
	"github.com/aerocell/towersync/internal/ingest"
	"github.com/aerocell/towersync/internal/migrate"
	"github.com/aerocell/towersync/internal/model"
	"github.com/aerocell/towersync/internal/provider"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Import tower lead CSVs",
	Long: `Import tower lead CSV files into Postgres.

By default, imports every known source file found in the configured lead
directory. Use --file to import a single file instead. Each source file has
a registered adapter; unknown filenames are an error.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := zap.L().With(zap.String("command", "ingest"))

		dir, _ := cmd.Flags().GetString("dir")
		file, _ := cmd.Flags().GetString("file")
		slug, _ := cmd.Flags().GetString("company")
		if dir == "" {
			dir = cfg.Ingest.Dir
		}
		if slug == "" {
			slug = cfg.Ingest.CompanySlug
		}
		if slug == "" {
			return eris.New("ingest: no company slug (set --company or ingest.company_slug)")
		}

		pool, err := dbPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := migrate.Migrate(ctx, pool); err != nil {
			return eris.Wrap(err, "ingest: migrate")
		}

		companyID, err := ingest.LookupCompany(ctx, pool, slug)
		if err != nil {
			return err
		}

		aliases := provider.DefaultAliases()
		if cfg.Ingest.ProviderAliasFile != "" {
			aliases, err = provider.LoadAliasFile(cfg.Ingest.ProviderAliasFile)
			if err != nil {
				return err
			}
		}
		resolver, err := provider.NewResolver(ctx, pool, aliases)
		if err != nil {
			return err
		}

		importer := ingest.NewImporter(
			pool,
			ingest.NewTowerMatcher(cfg.Ingest.ProximityTolerance),
			ingest.NewEntityResolver(),
			ingest.NewMerger(resolver, model.AccessState(cfg.Ingest.DefaultAccessState)),
			log,
		)

		adapters, err := selectAdapters(dir, file)
		if err != nil {
			return err
		}

		for _, a := range adapters {
			path := filepath.Join(dir, a.Source())
			f, err := os.Open(path)
			if err != nil {
				return eris.Wrapf(err, "ingest: open %s", path)
			}
			leads, err := a.Parse(f)
			f.Close()
			if err != nil {
				return err
			}

			log.Info("importing file", zap.String("file", a.Source()), zap.Int("leads", len(leads)))
			res, err := importer.Run(ctx, companyID, leads)
			if err != nil {
				return err
			}
			fmt.Printf("%s: imported=%d skipped=%d towers_created=%d entities_created=%d contacts_added=%d\n",
				a.Source(), res.Imported, res.Skipped, res.TowersCreated, res.EntitiesCreated, res.ContactsAdded)
		}

		summary, err := ingest.Summarize(ctx, pool, companyID)
		if err != nil {
			return err
		}
		fmt.Printf("totals: towers=%d sites=%d entities=%d contacts=%d providers=%d grants=%d\n",
			summary.Towers, summary.Sites, summary.Entities, summary.Contacts, summary.Providers, summary.Grants)
		return nil
	},
}

// selectAdapters resolves which source files to import. With an explicit file
// its adapter must exist; otherwise every registered file present in dir runs.
func selectAdapters(dir, file string) ([]adapter.Adapter, error) {
	if file != "" {
		a := adapter.ByFilename(filepath.Base(file))
		if a == nil {
			return nil, eris.Errorf("ingest: no adapter registered for %q", filepath.Base(file))
		}
		return []adapter.Adapter{a}, nil
	}

	var out []adapter.Adapter
	for _, a := range adapter.Registry() {
		if _, err := os.Stat(filepath.Join(dir, a.Source())); err == nil {
			out = append(out, a)
		}
	}
	if len(out) == 0 {
		return nil, eris.Errorf("ingest: no known lead files in %s", dir)
	}
	return out, nil
}

func init() {
	ingestCmd.Flags().String("dir", "", "lead directory (default from config)")
	ingestCmd.Flags().String("file", "", "import a single lead file by name")
	ingestCmd.Flags().String("company", "", "company slug to grant access to (default from config)")
	rootCmd.AddCommand(ingestCmd)
}
