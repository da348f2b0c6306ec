package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/aerocell/towersync/internal/db"
	"github.com/aerocell/towersync/internal/model"
)

// Result tallies one import run.
type Result struct {
	Imported        int
	Skipped         int
	TowersCreated   int
	TowersMatched   int
	EntitiesCreated int
	ContactsAdded   int
}

// Summary is the per-table row count snapshot printed after a run, scoped
// to the ingesting company's towers.
type Summary struct {
	Towers    int64
	Sites     int64
	Entities  int64
	Contacts  int64
	Providers int64
	Grants    int64
}

// Importer drives one file's worth of normalized leads through the store.
// Each lead is written in its own transaction; a failed lead is logged and
// skipped without aborting the run.
type Importer struct {
	pool     db.Pool
	matcher  *TowerMatcher
	entities *EntityResolver
	merger   *Merger
	log      *zap.Logger
}

// NewImporter wires an importer over the shared pool.
func NewImporter(pool db.Pool, matcher *TowerMatcher, entities *EntityResolver, merger *Merger, log *zap.Logger) *Importer {
	return &Importer{
		pool:     pool,
		matcher:  matcher,
		entities: entities,
		merger:   merger,
		log:      log,
	}
}

// LookupCompany resolves the ingesting company's id by slug.
func LookupCompany(ctx context.Context, pool db.Pool, slug string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, `SELECT id FROM companies WHERE slug = $1`, slug).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", eris.Errorf("ingest: no company with slug %q", slug)
	}
	if err != nil {
		return "", eris.Wrapf(err, "ingest: lookup company %q", slug)
	}
	return id, nil
}

// Run imports the leads for one company. Lead order is preserved so that
// first-occurrence-wins semantics hold for contacts and site fields.
func (im *Importer) Run(ctx context.Context, companyID string, leads []model.NormalizedLead) (Result, error) {
	var res Result
	now := time.Now().UTC()

	for i, lead := range leads {
		if err := im.importLead(ctx, companyID, lead, now, &res); err != nil {
			res.Skipped++
			im.log.Warn("lead skipped",
				zap.Int("row", i),
				zap.Float64("lat", lead.Latitude),
				zap.Float64("lng", lead.Longitude),
				zap.Error(err))
			continue
		}
		res.Imported++
	}

	im.log.Info("import complete",
		zap.Int("imported", res.Imported),
		zap.Int("skipped", res.Skipped),
		zap.Int("towers_created", res.TowersCreated),
		zap.Int("towers_matched", res.TowersMatched),
		zap.Int("entities_created", res.EntitiesCreated),
		zap.Int("contacts_added", res.ContactsAdded))
	return res, nil
}

func (im *Importer) importLead(ctx context.Context, companyID string, lead model.NormalizedLead, now time.Time, res *Result) error {
	var (
		resolved   ResolvedEntity
		created    bool
		contact    bool
		unresolved []string
	)

	err := db.WithTx(ctx, im.pool, func(q db.Querier) error {
		towerID, isNew, err := im.matcher.Match(ctx, q, lead.Latitude, lead.Longitude, lead.TowerType, now)
		if err != nil {
			return err
		}
		created = isNew

		var entityID *string
		if lead.EntityName != nil {
			resolved, err = im.entities.Resolve(ctx, q, *lead.EntityName, lead.Source)
			if err != nil {
				return err
			}
			entityID = &resolved.ID

			if lead.OwnerName != nil || lead.Email != nil || lead.PhonePrimary != nil {
				contact, err = im.merger.InsertContact(ctx, q, resolved.ID, lead)
				if err != nil {
					return err
				}
			}
		}

		if err := im.merger.UpsertSite(ctx, q, towerID, entityID, lead); err != nil {
			return err
		}
		if err := im.merger.GrantAccess(ctx, q, companyID, towerID); err != nil {
			return err
		}
		unresolved, err = im.merger.AttachProviders(ctx, q, towerID, lead)
		return err
	})
	if err != nil {
		return err
	}

	// Cache writes only after the commit so a rollback can't poison later
	// leads with a phantom entity id.
	im.entities.Remember(resolved)

	if created {
		res.TowersCreated++
	} else {
		res.TowersMatched++
	}
	if resolved.Created {
		res.EntitiesCreated++
	}
	if contact {
		res.ContactsAdded++
	}
	for _, token := range unresolved {
		im.log.Warn("unresolved carrier token", zap.String("token", token))
	}
	return nil
}

// Summarize reads the post-run table counts for the company's towers.
func Summarize(ctx context.Context, pool db.Pool, companyID string) (Summary, error) {
	var s Summary
	err := pool.QueryRow(ctx,
		`SELECT
		   (SELECT COUNT(*) FROM towers t JOIN company_towers ct ON ct.tower_id = t.id AND ct.company_id = $1),
		   (SELECT COUNT(*) FROM tower_sites ts JOIN company_towers ct ON ct.tower_id = ts.tower_id AND ct.company_id = $1),
		   (SELECT COUNT(*) FROM entities),
		   (SELECT COUNT(*) FROM entity_contacts),
		   (SELECT COUNT(*) FROM tower_providers tp JOIN company_towers ct ON ct.tower_id = tp.tower_id AND ct.company_id = $1),
		   (SELECT COUNT(*) FROM company_towers WHERE company_id = $1)`,
		companyID,
	).Scan(&s.Towers, &s.Sites, &s.Entities, &s.Contacts, &s.Providers, &s.Grants)
	if err != nil {
		return Summary{}, eris.Wrap(err, "ingest: summarize")
	}
	return s, nil
}
