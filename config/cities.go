package config

import "strings"

// City represents a city listings can be generated in
type City struct {
	Name      string    `json:"name"`
	Center    []float64 `json:"center"`
	ZoomLevel int       `json:"zoom_level"`
}

// Area is a neighbourhood featured by the assistant's area guide
type Area struct {
	Name    string    `json:"name"`
	City    string    `json:"city"`
	Center  []float64 `json:"center"`
	Summary string    `json:"summary"`
}

// SupportedCities is a list of cities supported by the application.
// Center is latitude, longitude.
var SupportedCities = []City{
	{Name: "Nairobi", Center: []float64{-1.286389, 36.817223}, ZoomLevel: 12},
	{Name: "Mombasa", Center: []float64{-4.043477, 39.668206}, ZoomLevel: 12},
	{Name: "Kisumu", Center: []float64{-0.091702, 34.767956}, ZoomLevel: 13},
	{Name: "Nakuru", Center: []float64{-0.303099, 36.080026}, ZoomLevel: 13},
	{Name: "Eldoret", Center: []float64{0.514277, 35.269779}, ZoomLevel: 13},
}

// PopularAreas lists the Nairobi neighbourhoods in guide order
var PopularAreas = []Area{
	{Name: "Westlands", City: "Nairobi", Center: []float64{-1.268200, 36.811000}, Summary: "Commercial hub, great amenities"},
	{Name: "Kilimani", City: "Nairobi", Center: []float64{-1.289500, 36.783300}, Summary: "Central location, modern apartments"},
	{Name: "Karen", City: "Nairobi", Center: []float64{-1.319400, 36.707300}, Summary: "Quiet, spacious homes"},
	{Name: "Runda", City: "Nairobi", Center: []float64{-1.218600, 36.809400}, Summary: "Premium residential area"},
}

// GetCityNames returns a list of supported city names
func GetCityNames() []string {
	names := make([]string, len(SupportedCities))
	for i, city := range SupportedCities {
		names[i] = city.Name
	}
	return names
}

// GetCityByName returns a city configuration by name, ignoring case
func GetCityByName(name string) *City {
	for _, city := range SupportedCities {
		if strings.EqualFold(city.Name, name) {
			return &city
		}
	}
	return nil
}

// GetAreaByName returns a popular area by name, ignoring case
func GetAreaByName(name string) *Area {
	for _, area := range PopularAreas {
		if strings.EqualFold(area.Name, name) {
			return &area
		}
	}
	return nil
}

// NormalizeCity lowercases a place name and joins its words with dashes,
// dropping apostrophes, so "Kilimani Estate" becomes "kilimani-estate".
func NormalizeCity(name string) string {
	name = strings.ReplaceAll(name, "'", "")
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}
