package model

import "time"

// Tower is a physical structure location, identified primarily by coordinates.
type Tower struct {
	ID          int64     `json:"id"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	TowerType   TowerType `json:"tower_type"`
	FirstSeenAt time.Time `json:"first_seen_at"`
	LastSeenAt  time.Time `json:"last_seen_at"`
}

// TowerSite is the descriptive/leasing metadata attached 1:1 to a tower.
type TowerSite struct {
	TowerID       int64   `json:"tower_id"`
	EntityID      *string `json:"entity_id,omitempty"`
	Address       *string `json:"address,omitempty"`
	City          *string `json:"city,omitempty"`
	State         *string `json:"state,omitempty"`
	ZipCode       *string `json:"zip_code,omitempty"`
	Carrier       *string `json:"carrier,omitempty"`
	Status        *string `json:"status,omitempty"`
	GoogleMapsURL *string `json:"google_maps_url,omitempty"`
	ImageryURL    *string `json:"imagery_url,omitempty"`
	Remarks       *string `json:"remarks,omitempty"`
	Source        string  `json:"source"`
}

// Entity is an owning organization or person-of-record.
type Entity struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	EntityType string `json:"entity_type"`
	Source     string `json:"source,omitempty"`
}

// EntityContact is an individual point of contact belonging to an entity.
type EntityContact struct {
	ID           string  `json:"id"`
	EntityID     string  `json:"entity_id"`
	ContactOrder int     `json:"contact_order"`
	FirstName    *string `json:"first_name,omitempty"`
	LastName     *string `json:"last_name,omitempty"`
	FullName     *string `json:"full_name,omitempty"`
	Title        *string `json:"title,omitempty"`
	PhonePrimary *string `json:"phone_primary,omitempty"`
	PhoneSecondary *string `json:"phone_secondary,omitempty"`
	EmailPrimary *string `json:"email_primary,omitempty"`
	Source       string  `json:"source,omitempty"`
}

// Provider is a canonical carrier/operator brand.
type Provider struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
