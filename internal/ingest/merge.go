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
	"github.com/aerocell/towersync/internal/provider"
)

// Merger applies one normalized lead's writes: the tower_sites fill-gaps
// upsert, conditional contact insert, company grant, and the multi-carrier
// provider decomposition. All methods run inside the lead's transaction.
type Merger struct {
	providers   *provider.Resolver
	accessState model.AccessState
}

// NewMerger creates a merger granting new towers at the given access tier.
func NewMerger(providers *provider.Resolver, accessState model.AccessState) *Merger {
	return &Merger{providers: providers, accessState: accessState}
}

// UpsertSite writes the tower's site row. On conflict each column is
// replaced only if the incoming value is non-null: known fields never
// regress to null.
func (m *Merger) UpsertSite(ctx context.Context, q db.Querier, towerID int64, entityID *string, lead model.NormalizedLead) error {
	site := model.TowerSite{
		TowerID:       towerID,
		EntityID:      entityID,
		Address:       lead.Address,
		City:          lead.City,
		State:         lead.State,
		ZipCode:       lead.ZipCode,
		Carrier:       lead.Carrier,
		Status:        lead.Status,
		GoogleMapsURL: lead.GoogleMapsURL,
		ImageryURL:    lead.ImageryURL,
		Remarks:       lead.Remarks,
		Source:        lead.Source,
	}
	_, err := q.Exec(ctx,
		`INSERT INTO tower_sites
		 (tower_id, entity_id, address, city, state, zip_code, carrier, status, google_maps_url, imagery_url, remarks, source)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 ON CONFLICT (tower_id) DO UPDATE SET
		   entity_id = COALESCE(EXCLUDED.entity_id, tower_sites.entity_id),
		   address = COALESCE(EXCLUDED.address, tower_sites.address),
		   city = COALESCE(EXCLUDED.city, tower_sites.city),
		   state = COALESCE(EXCLUDED.state, tower_sites.state),
		   zip_code = COALESCE(EXCLUDED.zip_code, tower_sites.zip_code),
		   carrier = COALESCE(EXCLUDED.carrier, tower_sites.carrier),
		   status = COALESCE(EXCLUDED.status, tower_sites.status),
		   google_maps_url = COALESCE(EXCLUDED.google_maps_url, tower_sites.google_maps_url),
		   imagery_url = COALESCE(EXCLUDED.imagery_url, tower_sites.imagery_url),
		   remarks = COALESCE(EXCLUDED.remarks, tower_sites.remarks),
		   updated_at = now()`,
		site.TowerID, site.EntityID, site.Address, site.City, site.State, site.ZipCode,
		site.Carrier, site.Status, site.GoogleMapsURL, site.ImageryURL,
		site.Remarks, site.Source,
	)
	if err != nil {
		return eris.Wrapf(err, "ingest: upsert site for tower %d", towerID)
	}
	return nil
}

// InsertContact adds the lead's owner as an entity contact unless a contact
// with the same full name or the same non-null email already exists for the
// entity.
func (m *Merger) InsertContact(ctx context.Context, q db.Querier, entityID string, lead model.NormalizedLead) (bool, error) {
	var name string
	if lead.OwnerName != nil {
		name = *lead.OwnerName
	}
	parsed := normalize.OwnerName(name)

	contact := model.EntityContact{
		ID:             uuid.New().String(),
		EntityID:       entityID,
		ContactOrder:   1,
		FirstName:      parsed.FirstName,
		LastName:       parsed.LastName,
		FullName:       parsed.FullName,
		Title:          lead.Title,
		PhonePrimary:   lead.PhonePrimary,
		PhoneSecondary: lead.PhoneSecondary,
		EmailPrimary:   lead.Email,
		Source:         lead.Source,
	}

	var existing string
	err := q.QueryRow(ctx,
		`SELECT id FROM entity_contacts
		 WHERE entity_id = $1
		 AND (
		   (full_name IS NOT NULL AND full_name = $2) OR
		   (email_primary IS NOT NULL AND email_primary = $3)
		 )`,
		contact.EntityID, contact.FullName, contact.EmailPrimary,
	).Scan(&existing)
	switch {
	case err == nil:
		return false, nil // duplicate, not re-inserted
	case errors.Is(err, pgx.ErrNoRows):
		// fall through to insert
	default:
		return false, eris.Wrapf(err, "ingest: check contact for entity %s", entityID)
	}

	_, err = q.Exec(ctx,
		`INSERT INTO entity_contacts
		 (id, entity_id, contact_order, first_name, last_name, full_name, title, phone_primary, phone_secondary, email_primary, source)
		 VALUES ($1, $2, 1, $3, $4, $5, $6, $7, $8, $9, $10)`,
		contact.ID, contact.EntityID, contact.FirstName, contact.LastName, contact.FullName,
		contact.Title, contact.PhonePrimary, contact.PhoneSecondary, contact.EmailPrimary, contact.Source,
	)
	if err != nil {
		return false, eris.Wrapf(err, "ingest: insert contact for entity %s", entityID)
	}
	return true, nil
}

// GrantAccess links the tower to the ingesting company at the default
// access tier. The first grant wins; existing grants are never downgraded.
func (m *Merger) GrantAccess(ctx context.Context, q db.Querier, companyID string, towerID int64) error {
	_, err := q.Exec(ctx,
		`INSERT INTO company_towers (company_id, tower_id, access_state)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (company_id, tower_id) DO NOTHING`,
		companyID, towerID, m.accessState,
	)
	if err != nil {
		return eris.Wrapf(err, "ingest: grant access to tower %d", towerID)
	}
	return nil
}

// AttachProviders decomposes the lead's raw carrier string into per-carrier
// junction rows. Tokens that fail to resolve are returned for the caller to
// log; no provider is created implicitly.
func (m *Merger) AttachProviders(ctx context.Context, q db.Querier, towerID int64, lead model.NormalizedLead) ([]string, error) {
	var unresolved []string
	for _, token := range normalize.SplitCarriers(lead.CarrierRaw) {
		providerID, ok := m.providers.Resolve(token)
		if !ok {
			unresolved = append(unresolved, token)
			continue
		}
		if _, err := q.Exec(ctx,
			`INSERT INTO tower_providers (tower_id, provider_id)
			 VALUES ($1, $2)
			 ON CONFLICT (tower_id, provider_id) DO NOTHING`,
			towerID, providerID,
		); err != nil {
			return unresolved, eris.Wrapf(err, "ingest: attach provider %q to tower %d", token, towerID)
		}
	}
	return unresolved, nil
}
