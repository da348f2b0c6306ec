package ingest

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/aerocell/towersync/internal/db"
	"github.com/aerocell/towersync/internal/model"
	"github.com/aerocell/towersync/internal/normalize"
)

// entityTypeLeadSource marks entities created from lead imports rather than
// curated records.
const entityTypeLeadSource = "LEAD_SOURCE"

// ResolvedEntity is the outcome of one resolution, carried until the lead's
// transaction commits.
type ResolvedEntity struct {
	ID      string
	Key     string
	Created bool
}

// EntityResolver finds-or-creates owning entities. The cache is run-scoped
// and owned by one importer; the store's case-insensitive lookup remains the
// actual uniqueness enforcement.
type EntityResolver struct {
	cache map[string]string // normalized name -> entity id
}

// NewEntityResolver creates a resolver with an empty run-scoped cache.
func NewEntityResolver() *EntityResolver {
	return &EntityResolver{cache: make(map[string]string)}
}

// Resolve returns the entity id for a raw entity name, creating the entity
// if no case-insensitive match exists. It runs inside the lead's transaction;
// the cache is only written via Remember after that transaction commits, so
// a rolled-back create cannot poison later leads.
func (r *EntityResolver) Resolve(ctx context.Context, q db.Querier, rawName, source string) (ResolvedEntity, error) {
	key := normalize.EntityKey(rawName)
	if key == "" {
		return ResolvedEntity{}, eris.New("ingest: empty entity name")
	}

	if id, ok := r.cache[key]; ok {
		return ResolvedEntity{ID: id, Key: key}, nil
	}

	var id string
	err := q.QueryRow(ctx, `SELECT id FROM entities WHERE UPPER(name) = $1`, key).Scan(&id)
	switch {
	case err == nil:
		return ResolvedEntity{ID: id, Key: key}, nil
	case errors.Is(err, pgx.ErrNoRows):
		// fall through to create
	default:
		return ResolvedEntity{}, eris.Wrapf(err, "ingest: lookup entity %q", rawName)
	}

	ent := model.Entity{
		ID:         uuid.New().String(),
		Name:       rawName,
		EntityType: entityTypeLeadSource,
		Source:     source,
	}
	if _, err := q.Exec(ctx,
		`INSERT INTO entities (id, name, entity_type, source) VALUES ($1, $2, $3, $4)`,
		ent.ID, ent.Name, ent.EntityType, ent.Source,
	); err != nil {
		return ResolvedEntity{}, eris.Wrapf(err, "ingest: create entity %q", rawName)
	}

	return ResolvedEntity{ID: ent.ID, Key: key, Created: true}, nil
}

// Remember caches a resolution after its transaction has committed.
func (r *EntityResolver) Remember(e ResolvedEntity) {
	if e.Key != "" {
		r.cache[e.Key] = e.ID
	}
}
