package models

import "time"

type PropertyType string

const (
	PropertyApartment PropertyType = "apartment"
	PropertyHouse     PropertyType = "house"
	PropertyRoom      PropertyType = "room"
	PropertyStudio    PropertyType = "studio"
	PropertyHostel    PropertyType = "hostel"
	PropertyOther     PropertyType = "other"
)

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone,omitempty"`
	Avatar string `json:"avatar,omitempty"`
	IsHost bool   `json:"is_host"`

	// Property-owner profile
	IsPropertyOwner  bool   `json:"is_property_owner"`
	IDNumber         string `json:"id_number,omitempty"`
	Company          string `json:"company,omitempty"`
	ProfileCompleted bool   `json:"profile_completed"`
}

type Listing struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Price       int          `json:"price"`
	Location    string       `json:"location"`
	Coordinates Coordinates  `json:"coordinates"`
	Type        PropertyType `json:"type"`
	Bedrooms    int          `json:"bedrooms"`
	Bathrooms   int          `json:"bathrooms"`
	Area        int          `json:"area"`
	Amenities   []string     `json:"amenities"`
	Images      []string     `json:"images"`
	Host        User         `json:"host"`
	Rating      float64      `json:"rating"`
	ReviewCount int          `json:"review_count"`
	IsAvailable bool         `json:"is_available"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Clone returns a copy that shares no slices with l.
func (l Listing) Clone() Listing {
	l.Amenities = append([]string(nil), l.Amenities...)
	l.Images = append([]string(nil), l.Images...)
	return l
}

type ProcurementItem struct {
	Property Listing   `json:"property"`
	AddedAt  time.Time `json:"added_at"`
}
