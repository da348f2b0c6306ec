package adapter

import (
	"io"
	"strings"

	"github.com/aerocell/towersync/internal/model"
	"github.com/aerocell/towersync/internal/normalize"
)

// driveHost is the imagery hosting domain recognized as a real imagery link.
const driveHost = "drive.google.com"

// RichLeads handles the rich lead layout carrying per-lead imagery and a
// secondary contact number.
type RichLeads struct {
	source string
}

// NewRichLeads creates the adapter for the rich lead layout.
func NewRichLeads(source string) *RichLeads {
	return &RichLeads{source: source}
}

func (a *RichLeads) Source() string { return a.source }

func (a *RichLeads) Columns() []string {
	return []string{
		"Status", "Address", "City", "State", "Zip", "Tower Type", "Carrier",
		"Imagery", "Entity Name", "Owner Name", "Title", "Owner Contact #",
		"Secondary #", "Email", "Google Maps URL", "Remarks", "Latitude", "Longitude",
	}
}

func (a *RichLeads) Parse(r io.Reader) ([]model.NormalizedLead, error) {
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
		// "Multi" address rows are multi-site aggregates with no single
		// usable location.
		if row.get("Address") == "Multi" {
			continue
		}

		carrierRaw := row.get("Carrier")
		lead := model.NormalizedLead{
			Latitude:       lat,
			Longitude:      lng,
			TowerType:      normalize.TowerType(row.get("Tower Type")),
			Address:        normalize.Optional(row.get("Address")),
			City:           normalize.Optional(row.get("City")),
			State:          normalize.Optional(row.get("State")),
			ZipCode:        normalize.Optional(row.get("Zip")),
			Carrier:        normalize.Optional(normalize.Carrier(carrierRaw)),
			CarrierRaw:     carrierRaw,
			Status:         statusOrActive(row.get("Status")),
			GoogleMapsURL:  a.mapsURL(row.get("Google Maps URL")),
			ImageryURL:     a.imageryURL(row.get("Imagery")),
			Remarks:        normalize.Optional(row.get("Remarks")),
			EntityName:     normalize.StripSentinel(row.get("Entity Name")),
			OwnerName:      normalize.StripSentinel(row.get("Owner Name")),
			Title:          normalize.StripSentinel(row.get("Title")),
			PhonePrimary:   normalize.Phone(row.get("Owner Contact #")),
			PhoneSecondary: normalize.Phone(row.get("Secondary #")),
			Email:          normalize.Email(row.get("Email")),
			Source:         a.source,
		}
		leads = append(leads, lead)
	}
	return leads, nil
}

// mapsURL drops the literal "url" header artifact that leaks into this
// layout's link column.
func (a *RichLeads) mapsURL(raw string) *string {
	if raw == "" || strings.ToLower(raw) == "url" {
		return nil
	}
	return &raw
}

// imageryURL accepts only links on the recognized drive hosting domain.
func (a *RichLeads) imageryURL(raw string) *string {
	if raw == "" || !strings.Contains(raw, driveHost) {
		return nil
	}
	return &raw
}
