package search

import (
	"strings"
	"time"

	"github.com/aerocell/towersync/internal/model"
)

// buildTowerDocument denormalizes one tower row into its search document.
// Array and map fields are always present (empty, not null) so index filters
// behave consistently.
func buildTowerDocument(r towerRow) model.TowerDocument {
	doc := model.TowerDocument{
		ID:        r.ID,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Geo:       model.GeoPoint{Lat: r.Latitude, Lng: r.Longitude},

		Address:       r.Address,
		City:          r.City,
		State:         r.State,
		ZipCode:       r.ZipCode,
		Carrier:       r.Carrier,
		TowerType:     r.TowerType,
		Status:        r.Status,
		GoogleMapsURL: r.GoogleMapsURL,

		EntityID:   r.EntityID,
		EntityName: r.EntityName,
		EntityType: r.EntityType,

		ContactNames:  []string{},
		ContactEmails: []string{},
		ContactPhones: []string{},
		CompanyIDs:    []string{},
		AccessStates:  map[string]string{},

		ProviderCount: r.ProviderCount,
		ProviderNames: r.ProviderNames,

		CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: r.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if doc.ProviderNames == nil {
		doc.ProviderNames = []string{}
	}

	for _, c := range r.Contacts {
		if name := contactDisplayName(c); name != "" {
			doc.ContactNames = append(doc.ContactNames, name)
		}
		if c.Email != nil && *c.Email != "" {
			doc.ContactEmails = append(doc.ContactEmails, *c.Email)
		}
		if c.Phone != nil && *c.Phone != "" {
			doc.ContactPhones = append(doc.ContactPhones, *c.Phone)
		}
		if c.Order == 1 && doc.PrimaryContactName == nil {
			doc.PrimaryContactName = c.FullName
			doc.PrimaryContactTitle = c.Title
			doc.PrimaryContactPhone = c.Phone
			doc.PrimaryContactEmail = c.Email
		}
	}

	for _, ca := range r.CompanyAccess {
		doc.CompanyIDs = append(doc.CompanyIDs, ca.CompanyID)
		doc.AccessStates[ca.CompanyID] = ca.AccessState
	}

	return doc
}

// buildEntityDocument denormalizes one entity row into its search document.
func buildEntityDocument(r entityRow) model.EntityDocument {
	doc := model.EntityDocument{
		ID:           r.ID,
		Name:         r.Name,
		EntityType:   r.EntityType,
		ContactNames: []string{},
		TowerCount:   r.TowerCount,
		CompanyIDs:   r.CompanyIDs,
	}
	if doc.CompanyIDs == nil {
		doc.CompanyIDs = []string{}
	}

	for _, c := range r.Contacts {
		if c.FullName != nil && *c.FullName != "" {
			doc.ContactNames = append(doc.ContactNames, *c.FullName)
		}
		if c.Order == 1 && doc.PrimaryContactName == nil {
			doc.PrimaryContactName = c.FullName
			doc.PrimaryContactTitle = c.Title
		}
	}

	return doc
}

// contactDisplayName prefers full_name, falling back to "first last".
func contactDisplayName(c contactRow) string {
	if c.FullName != nil && *c.FullName != "" {
		return *c.FullName
	}
	var parts []string
	if c.FirstName != nil && *c.FirstName != "" {
		parts = append(parts, *c.FirstName)
	}
	if c.LastName != nil && *c.LastName != "" {
		parts = append(parts, *c.LastName)
	}
	return strings.Join(parts, " ")
}
