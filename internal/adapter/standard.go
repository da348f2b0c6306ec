package adapter

import (
	"io"
	"strings"

	"github.com/aerocell/towersync/internal/model"
	"github.com/aerocell/towersync/internal/normalize"
)

// mapsPlaceholder is the link text this layout emits when there is no real
// Google Maps URL behind it.
const mapsPlaceholder = "View in Google Maps"

// StandardLeads handles the simpler lead layout without imagery or a
// secondary contact number.
type StandardLeads struct {
	source string
}

// NewStandardLeads creates the adapter for the standard lead layout.
func NewStandardLeads(source string) *StandardLeads {
	return &StandardLeads{source: source}
}

func (a *StandardLeads) Source() string { return a.source }

func (a *StandardLeads) Columns() []string {
	return []string{
		"Status", "Address", "City", "State", "Zip", "Tower Type", "Carrier",
		"Entity Name", "Owner Name", "Title", "Owner Contact #", "Email",
		"Google Maps URL", "Remarks", "Latitude", "Longitude",
	}
}

func (a *StandardLeads) Parse(r io.Reader) ([]model.NormalizedLead, error) {
	rows, err := readRows(r, a.source, a.Columns())
	if err != nil {
		return nil, err
	}

	var leads []model.NormalizedLead
	for _, row := range rows {
		lat, lng, ok := parseCoords(row.get("Latitude"), row.get("Longitude"))
		if !ok {
			continue
		}
		if row.get("Address") == "Multi" {
			continue
		}

		carrierRaw := row.get("Carrier")
		lead := model.NormalizedLead{
			Latitude:      lat,
			Longitude:     lng,
			TowerType:     normalize.TowerType(row.get("Tower Type")),
			Address:       normalize.Optional(row.get("Address")),
			City:          normalize.Optional(row.get("City")),
			State:         normalize.Optional(row.get("State")),
			ZipCode:       normalize.Optional(row.get("Zip")),
			Carrier:       normalize.Optional(normalize.Carrier(carrierRaw)),
			CarrierRaw:    carrierRaw,
			Status:        statusOrActive(row.get("Status")),
			GoogleMapsURL: placeholderURL(row.get("Google Maps URL")),
			Remarks:       normalize.Optional(row.get("Remarks")),
			EntityName:    normalize.Optional(row.get("Entity Name")),
			OwnerName:     normalize.Optional(row.get("Owner Name")),
			Title:         normalize.Optional(row.get("Title")),
			PhonePrimary:  normalize.Phone(row.get("Owner Contact #")),
			Email:         normalize.Email(row.get("Email")),
			Source:        a.source,
		}
		leads = append(leads, lead)
	}
	return leads, nil
}

// placeholderURL treats the known placeholder link text as absent rather
// than as a usable link.
func placeholderURL(raw string) *string {
	if raw == "" || strings.Contains(raw, mapsPlaceholder) {
		return nil
	}
	return &raw
}
