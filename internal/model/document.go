package model

// GeoPoint is the Meilisearch _geo field on tower documents.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// TowerDocument is the denormalized, access-scoped search document for one
// tower. It is rebuilt from relational state on every sync and is never a
// system of record.
type TowerDocument struct {
	ID        int64    `json:"id"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Geo       GeoPoint `json:"_geo"`

	// Site info (denormalized for search)
	Address       *string `json:"address,omitempty"`
	City          *string `json:"city,omitempty"`
	State         *string `json:"state,omitempty"`
	ZipCode       *string `json:"zip_code,omitempty"`
	Carrier       *string `json:"carrier,omitempty"`
	TowerType     *string `json:"tower_type,omitempty"`
	Status        *string `json:"status,omitempty"`
	GoogleMapsURL *string `json:"google_maps_url,omitempty"`

	// Entity info (denormalized)
	EntityID   *string `json:"entity_id,omitempty"`
	EntityName *string `json:"entity_name,omitempty"`
	EntityType *string `json:"entity_type,omitempty"`

	// Contacts (flattened for search)
	ContactNames        []string `json:"contact_names"`
	ContactEmails       []string `json:"contact_emails"`
	ContactPhones       []string `json:"contact_phones"`
	PrimaryContactName  *string  `json:"primary_contact_name,omitempty"`
	PrimaryContactTitle *string  `json:"primary_contact_title,omitempty"`
	PrimaryContactPhone *string  `json:"primary_contact_phone,omitempty"`
	PrimaryContactEmail *string  `json:"primary_contact_email,omitempty"`

	// Access control
	CompanyIDs   []string          `json:"company_ids"`
	AccessStates map[string]string `json:"access_states"`

	// Multi-tenant info
	ProviderCount int      `json:"provider_count"`
	ProviderNames []string `json:"provider_names"`

	// Metadata
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// EntityDocument is the denormalized search document for one entity. An
// entity is visible to a company iff at least one of its towers is.
type EntityDocument struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	EntityType *string `json:"entity_type,omitempty"`

	// Contacts (flattened)
	ContactNames        []string `json:"contact_names"`
	PrimaryContactName  *string  `json:"primary_contact_name,omitempty"`
	PrimaryContactTitle *string  `json:"primary_contact_title,omitempty"`

	// Stats
	TowerCount int `json:"tower_count"`

	// Access control (derived via the entity's towers' grants)
	CompanyIDs []string `json:"company_ids"`
}
