package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func sp(s string) *string { return &s }

func TestBuildTowerDocument(t *testing.T) {
	created := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	updated := time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)

	r := towerRow{
		ID:        42,
		Latitude:  32.7767,
		Longitude: -96.797,
		TowerType: sp("MACRO"),
		CreatedAt: created,
		UpdatedAt: updated,
		Address:   sp("100 Main St"),
		City:      sp("Dallas"),
		State:     sp("TX"),
		EntityID:  sp("ent-1"),
		Contacts: []contactRow{
			{Order: 1, FullName: sp("Jane Doe"), Title: sp("Manager"), Email: sp("jane@example.com")},
			{Order: 2, FirstName: sp("Bob"), LastName: sp("Smith"), Phone: sp("555-0100")},
		},
		CompanyAccess: []companyAccessRow{
			{CompanyID: "co-1", AccessState: "SAMPLE"},
			{CompanyID: "co-2", AccessState: "FULL"},
		},
		ProviderCount: 2,
		ProviderNames: []string{"AT&T", "Verizon"},
	}

	doc := buildTowerDocument(r)

	assert.Equal(t, int64(42), doc.ID)
	assert.Equal(t, 32.7767, doc.Geo.Lat)
	assert.Equal(t, -96.797, doc.Geo.Lng)
	assert.Equal(t, []string{"Jane Doe", "Bob Smith"}, doc.ContactNames)
	assert.Equal(t, []string{"jane@example.com"}, doc.ContactEmails)
	assert.Equal(t, []string{"555-0100"}, doc.ContactPhones)
	assert.Equal(t, sp("Jane Doe"), doc.PrimaryContactName)
	assert.Equal(t, sp("Manager"), doc.PrimaryContactTitle)
	assert.Equal(t, []string{"co-1", "co-2"}, doc.CompanyIDs)
	assert.Equal(t, map[string]string{"co-1": "SAMPLE", "co-2": "FULL"}, doc.AccessStates)
	assert.Equal(t, 2, doc.ProviderCount)
	assert.Equal(t, "2026-01-05T10:00:00Z", doc.CreatedAt)
	assert.Equal(t, "2026-02-01T09:30:00Z", doc.UpdatedAt)
}

func TestBuildTowerDocument_EmptyAggregates(t *testing.T) {
	doc := buildTowerDocument(towerRow{ID: 1, Latitude: 1, Longitude: 2})

	// Empty slices, not null: index filters rely on the fields existing.
	assert.NotNil(t, doc.ContactNames)
	assert.Empty(t, doc.ContactNames)
	assert.NotNil(t, doc.CompanyIDs)
	assert.NotNil(t, doc.AccessStates)
	assert.NotNil(t, doc.ProviderNames)
	assert.Nil(t, doc.PrimaryContactName)
}

func TestBuildEntityDocument(t *testing.T) {
	r := entityRow{
		ID:         "ent-1",
		Name:       "Oncor Electric",
		EntityType: sp("LEAD_SOURCE"),
		TowerCount: 7,
		Contacts: []contactRow{
			{Order: 1, FullName: sp("Jane Doe"), Title: sp("Manager")},
			{Order: 2, FullName: sp("Bob Smith")},
		},
		CompanyIDs: []string{"co-1"},
	}

	doc := buildEntityDocument(r)

	assert.Equal(t, "Oncor Electric", doc.Name)
	assert.Equal(t, []string{"Jane Doe", "Bob Smith"}, doc.ContactNames)
	assert.Equal(t, sp("Jane Doe"), doc.PrimaryContactName)
	assert.Equal(t, 7, doc.TowerCount)
	assert.Equal(t, []string{"co-1"}, doc.CompanyIDs)
}

func TestBuildEntityDocument_NilCompanyIDs(t *testing.T) {
	doc := buildEntityDocument(entityRow{ID: "e", Name: "n"})
	assert.NotNil(t, doc.CompanyIDs)
	assert.Empty(t, doc.CompanyIDs)
}

func TestContactDisplayName(t *testing.T) {
	assert.Equal(t, "Jane Doe", contactDisplayName(contactRow{FullName: sp("Jane Doe")}))
	assert.Equal(t, "Bob Smith", contactDisplayName(contactRow{FirstName: sp("Bob"), LastName: sp("Smith")}))
	assert.Equal(t, "Bob", contactDisplayName(contactRow{FirstName: sp("Bob")}))
	assert.Equal(t, "", contactDisplayName(contactRow{}))
}
