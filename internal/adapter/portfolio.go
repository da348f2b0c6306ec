package adapter

import (
	"io"

	"github.com/aerocell/towersync/internal/model"
	"github.com/aerocell/towersync/internal/normalize"
)

// Portfolio handles the minimal portfolio layout. It records only an owning
// operator, so entity name and owner name collapse to the same column.
type Portfolio struct {
	source string
}

// NewPortfolio creates the adapter for the portfolio layout.
func NewPortfolio(source string) *Portfolio {
	return &Portfolio{source: source}
}

func (a *Portfolio) Source() string { return a.source }

func (a *Portfolio) Columns() []string {
	return []string{
		"Status", "Tower Type", "Carrier", "Owner Name", "Owner Contact #",
		"Google Maps URL", "Latitude", "Longitude",
	}
}

func (a *Portfolio) Parse(r io.Reader) ([]model.NormalizedLead, error) {
	rows, err := readRows(r, a.source, a.Columns())
	if err != nil {
		return nil, err
	}

	var leads []model.NormalizedLead
	for _, row := range rows {
		// This layout filters on presence of coordinate text; rows whose
		// text then fails to parse still cannot yield finite coordinates
		// and are dropped at parse time.
		if row.get("Latitude") == "" || row.get("Longitude") == "" {
			continue
		}
		lat, lng, ok := parseCoords(row.get("Latitude"), row.get("Longitude"))
		if !ok {
			continue
		}

		owner := row.get("Owner Name")
		carrierRaw := row.get("Carrier")
		lead := model.NormalizedLead{
			Latitude:      lat,
			Longitude:     lng,
			TowerType:     normalize.TowerType(row.get("Tower Type")),
			Carrier:       normalize.Optional(normalize.Carrier(carrierRaw)),
			CarrierRaw:    carrierRaw,
			Status:        statusOrActive(row.get("Status")),
			GoogleMapsURL: placeholderURL(row.get("Google Maps URL")),
			EntityName:    normalize.Optional(owner),
			OwnerName:     normalize.Optional(owner),
			PhonePrimary:  normalize.Phone(row.get("Owner Contact #")),
			Source:        a.source,
		}
		leads = append(leads, lead)
	}
	return leads, nil
}
