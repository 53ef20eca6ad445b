package catalog

import (
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"nestlink/server/internal/models"
)

// DefaultFeaturedCount is the size of the featured strip on the home screen
const DefaultFeaturedCount = 5

// Featured returns the first n listings. Featured is positional; there is
// no ranking.
func Featured(listings []models.Listing, n int) []models.Listing {
	if n > len(listings) {
		n = len(listings)
	}
	if n < 0 {
		n = 0
	}
	return append([]models.Listing{}, listings[:n]...)
}

// Search keeps the listings whose title, location or description contains
// query, ignoring case. Input order is preserved.
func Search(query string, listings []models.Listing) []models.Listing {
	q := strings.ToLower(query)
	result := make([]models.Listing, 0, len(listings))
	for _, l := range listings {
		if strings.Contains(strings.ToLower(l.Title), q) ||
			strings.Contains(strings.ToLower(l.Location), q) ||
			strings.Contains(strings.ToLower(l.Description), q) {
			result = append(result, l)
		}
	}
	return result
}

// Nearby keeps the listings within radiusKm of center. Input order is
// preserved.
func Nearby(center orb.Point, radiusKm float64, listings []models.Listing) []models.Listing {
	result := make([]models.Listing, 0)
	if radiusKm < 0 {
		return result
	}

	for _, l := range listings {
		p := orb.Point{l.Coordinates.Longitude, l.Coordinates.Latitude}
		if geo.Distance(center, p) <= radiusKm*1000 {
			result = append(result, l)
		}
	}
	return result
}
