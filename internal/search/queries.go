package search

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/aerocell/towersync/internal/db"
)

// towerRow is one joined tower record with its aggregated contacts, grants,
// and providers, as loaded for document building.
type towerRow struct {
	ID            int64
	Latitude      float64
	Longitude     float64
	TowerType     *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Address       *string
	City          *string
	State         *string
	ZipCode       *string
	Carrier       *string
	Status        *string
	GoogleMapsURL *string
	EntityID      *string
	EntityName    *string
	EntityType    *string
	Contacts      []contactRow
	CompanyAccess []companyAccessRow
	ProviderCount int
	ProviderNames []string
}

type contactRow struct {
	Order     int     `json:"order"`
	FullName  *string `json:"full_name"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Title     *string `json:"title"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email"`
}

type companyAccessRow struct {
	CompanyID   string `json:"company_id"`
	AccessState string `json:"access_state"`
}

// entityRow is one entity record with its aggregated contacts and derived
// company visibility.
type entityRow struct {
	ID         string
	Name       string
	EntityType *string
	TowerCount int
	Contacts   []contactRow
	CompanyIDs []string
}

const towerSelect = `
	SELECT
		t.id,
		t.latitude,
		t.longitude,
		t.tower_type,
		t.created_at,
		t.updated_at,
		ts.address,
		ts.city,
		ts.state,
		ts.zip_code,
		ts.carrier,
		ts.status,
		ts.google_maps_url,
		e.id AS entity_id,
		e.name AS entity_name,
		e.entity_type,
		(
			SELECT json_agg(json_build_object(
				'order', ec.contact_order,
				'full_name', ec.full_name,
				'first_name', ec.first_name,
				'last_name', ec.last_name,
				'title', ec.title,
				'phone', ec.phone_primary,
				'email', ec.email_primary
			) ORDER BY ec.contact_order)
			FROM entity_contacts ec
			WHERE ec.entity_id = e.id
		) AS contacts,
		(
			SELECT json_agg(json_build_object(
				'company_id', ct.company_id,
				'access_state', ct.access_state
			))
			FROM company_towers ct
			WHERE ct.tower_id = t.id
		) AS company_access,
		(
			SELECT COUNT(*)::int
			FROM tower_providers tp
			WHERE tp.tower_id = t.id
		) AS provider_count,
		(
			SELECT array_agg(p.name ORDER BY p.name)
			FROM tower_providers tp
			JOIN providers p ON p.id = tp.provider_id
			WHERE tp.tower_id = t.id
		) AS provider_names
	FROM towers t
	LEFT JOIN tower_sites ts ON ts.tower_id = t.id
	LEFT JOIN entities e ON ts.entity_id = e.id`

const entitySelect = `
	SELECT
		e.id,
		e.name,
		e.entity_type,
		(
			SELECT COUNT(*)::int
			FROM tower_sites ts
			WHERE ts.entity_id = e.id
		) AS tower_count,
		(
			SELECT json_agg(json_build_object(
				'order', ec.contact_order,
				'full_name', ec.full_name,
				'title', ec.title
			) ORDER BY ec.contact_order)
			FROM entity_contacts ec
			WHERE ec.entity_id = e.id
		) AS contacts,
		(
			SELECT array_agg(DISTINCT ct.company_id)
			FROM tower_sites ts
			JOIN company_towers ct ON ct.tower_id = ts.tower_id
			WHERE ts.entity_id = e.id
		) AS company_ids
	FROM entities e`

func scanTowerRow(row interface{ Scan(...any) error }) (towerRow, error) {
	var r towerRow
	var contactsJSON, accessJSON []byte
	err := row.Scan(
		&r.ID, &r.Latitude, &r.Longitude, &r.TowerType, &r.CreatedAt, &r.UpdatedAt,
		&r.Address, &r.City, &r.State, &r.ZipCode, &r.Carrier, &r.Status,
		&r.GoogleMapsURL, &r.EntityID, &r.EntityName, &r.EntityType,
		&contactsJSON, &accessJSON, &r.ProviderCount, &r.ProviderNames,
	)
	if err != nil {
		return towerRow{}, err
	}
	if contactsJSON != nil {
		if err := json.Unmarshal(contactsJSON, &r.Contacts); err != nil {
			return towerRow{}, eris.Wrap(err, "search: decode contacts")
		}
	}
	if accessJSON != nil {
		if err := json.Unmarshal(accessJSON, &r.CompanyAccess); err != nil {
			return towerRow{}, eris.Wrap(err, "search: decode company access")
		}
	}
	return r, nil
}

func scanEntityRow(row interface{ Scan(...any) error }) (entityRow, error) {
	var r entityRow
	var contactsJSON []byte
	err := row.Scan(&r.ID, &r.Name, &r.EntityType, &r.TowerCount, &contactsJSON, &r.CompanyIDs)
	if err != nil {
		return entityRow{}, err
	}
	if contactsJSON != nil {
		if err := json.Unmarshal(contactsJSON, &r.Contacts); err != nil {
			return entityRow{}, eris.Wrap(err, "search: decode contacts")
		}
	}
	return r, nil
}

// loadTowerBatch pages through towers in id order.
func loadTowerBatch(ctx context.Context, pool db.Pool, limit, offset int) ([]towerRow, error) {
	rows, err := pool.Query(ctx, towerSelect+` ORDER BY t.id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, eris.Wrap(err, "search: load tower batch")
	}
	defer rows.Close()

	var out []towerRow
	for rows.Next() {
		r, err := scanTowerRow(rows)
		if err != nil {
			return nil, eris.Wrap(err, "search: scan tower row")
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// loadTower loads one tower by id. Returns (nil, nil) when the tower no
// longer exists.
func loadTower(ctx context.Context, pool db.Pool, id int64) (*towerRow, error) {
	r, err := scanTowerRow(pool.QueryRow(ctx, towerSelect+` WHERE t.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "search: load tower %d", id)
	}
	return &r, nil
}

// loadEntityBatch pages through entities in id order.
func loadEntityBatch(ctx context.Context, pool db.Pool, limit, offset int) ([]entityRow, error) {
	rows, err := pool.Query(ctx, entitySelect+` ORDER BY e.id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, eris.Wrap(err, "search: load entity batch")
	}
	defer rows.Close()

	var out []entityRow
	for rows.Next() {
		r, err := scanEntityRow(rows)
		if err != nil {
			return nil, eris.Wrap(err, "search: scan entity row")
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// loadEntity loads one entity by id. Returns (nil, nil) when the entity no
// longer exists.
func loadEntity(ctx context.Context, pool db.Pool, id string) (*entityRow, error) {
	r, err := scanEntityRow(pool.QueryRow(ctx, entitySelect+` WHERE e.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "search: load entity %s", id)
	}
	return &r, nil
}

// updatedTowerIDs returns the ids of towers whose own row, site, entity, or
// entity contacts changed after the watermark.
func updatedTowerIDs(ctx context.Context, pool db.Pool, since time.Time) ([]int64, error) {
	rows, err := pool.Query(ctx,
		`SELECT DISTINCT t.id
		 FROM towers t
		 LEFT JOIN tower_sites ts ON ts.tower_id = t.id
		 LEFT JOIN entities e ON ts.entity_id = e.id
		 LEFT JOIN entity_contacts ec ON ec.entity_id = e.id
		 WHERE t.updated_at > $1
		    OR ts.updated_at > $1
		    OR e.updated_at > $1
		    OR ec.created_at > $1`,
		since,
	)
	if err != nil {
		return nil, eris.Wrap(err, "search: list updated towers")
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrap(err, "search: scan tower id")
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// updatedEntityIDs returns the ids of entities whose row or contacts changed
// after the watermark.
func updatedEntityIDs(ctx context.Context, pool db.Pool, since time.Time) ([]string, error) {
	rows, err := pool.Query(ctx,
		`SELECT DISTINCT e.id
		 FROM entities e
		 LEFT JOIN entity_contacts ec ON ec.entity_id = e.id
		 WHERE e.updated_at > $1 OR ec.created_at > $1`,
		since,
	)
	if err != nil {
		return nil, eris.Wrap(err, "search: list updated entities")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrap(err, "search: scan entity id")
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
