package model

// TowerType classifies the physical structure of a tower.
type TowerType string

const (
	TowerTypeMacro TowerType = "MACRO"
	TowerTypeMicro TowerType = "MICRO"
	TowerTypePico  TowerType = "PICO"
	TowerTypeDAS   TowerType = "DAS"
	TowerTypeCOW   TowerType = "COW"
)

// AccessState is the tier at which a company can see a tower.
type AccessState string

const (
	AccessSample   AccessState = "SAMPLE"
	AccessTrial    AccessState = "TRIAL"
	AccessLicensed AccessState = "LICENSED"
	AccessFull     AccessState = "FULL"
)

// NormalizedLead is the canonical form of one source row, produced by a
// format adapter and consumed once by the importer. Optional fields are
// pointers so absent source values stay NULL through the merge.
type NormalizedLead struct {
	// Tower info
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	TowerType TowerType `json:"tower_type"`

	// Site info
	Address       *string `json:"address,omitempty"`
	City          *string `json:"city,omitempty"`
	State         *string `json:"state,omitempty"`
	ZipCode       *string `json:"zip_code,omitempty"`
	Carrier       *string `json:"carrier,omitempty"`
	Status        *string `json:"status,omitempty"`
	GoogleMapsURL *string `json:"google_maps_url,omitempty"`
	ImageryURL    *string `json:"imagery_url,omitempty"`
	Remarks       *string `json:"remarks,omitempty"`

	// CarrierRaw is the unnormalized carrier text; the provider decomposition
	// re-splits it independently of the single-carrier field above.
	CarrierRaw string `json:"carrier_raw,omitempty"`

	// Entity info
	EntityName *string `json:"entity_name,omitempty"`

	// Contact info
	OwnerName      *string `json:"owner_name,omitempty"`
	Title          *string `json:"title,omitempty"`
	PhonePrimary   *string `json:"phone_primary,omitempty"`
	PhoneSecondary *string `json:"phone_secondary,omitempty"`
	Email          *string `json:"email,omitempty"`

	// Source tracking
	Source string `json:"source"`
}

// OwnerNameParts holds the decomposition of a raw contact name.
type OwnerNameParts struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	FullName  *string `json:"full_name,omitempty"`
}
