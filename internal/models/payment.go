package models

import "time"

type PaymentType string

const (
	PaymentProperty   PaymentType = "property"
	PaymentRelocation PaymentType = "relocation"
)

// Valid reports whether t is one of the known checkout flows
func (t PaymentType) Valid() bool {
	return t == PaymentProperty || t == PaymentRelocation
}

// PaymentItem is one charge queued by a checkout flow. Metadata holds a
// PropertyMetadata or RelocationMetadata depending on Type.
type PaymentItem struct {
	ID          string      `json:"id"`
	Type        PaymentType `json:"type"`
	Amount      int         `json:"amount"`
	Description string      `json:"description"`
	Metadata    any         `json:"metadata,omitempty"`
}

type PropertyMetadata struct {
	ListingIDs []string `json:"listing_ids"`
	Subtotal   int      `json:"subtotal"`
	ServiceFee int      `json:"service_fee"`
}

type RelocationMetadata struct {
	Vehicle     Vehicle   `json:"vehicle"`
	Pickup      string    `json:"pickup"`
	Destination string    `json:"destination"`
	Timestamp   time.Time `json:"timestamp"`
	DistanceKm  *float64  `json:"distance_km,omitempty"`
}

type VehicleType string

const (
	VehiclePickup VehicleType = "pickup"
	VehicleVan    VehicleType = "van"
	VehicleTruck  VehicleType = "truck"
)

type Vehicle struct {
	ID       string      `json:"id"`
	Type     VehicleType `json:"type"`
	Name     string      `json:"name"`
	Capacity string      `json:"capacity"`
	Price    int         `json:"price"`
	ETA      string      `json:"eta"`
	Rating   float64     `json:"rating"`
	Reviews  int         `json:"reviews"`
}

// PaymentMethod is an option shown on the payment screen
type PaymentMethod struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
}
