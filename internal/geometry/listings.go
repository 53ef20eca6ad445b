// Package geometry turns the catalog into GeoJSON for the map screen.
package geometry

import (
	"sort"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"nestlink/server/internal/models"
)

// ListingPoint returns the map position of a listing. orb points are
// longitude first.
func ListingPoint(l models.Listing) orb.Point {
	return orb.Point{l.Coordinates.Longitude, l.Coordinates.Latitude}
}

// ListingsFeatureCollection renders one point feature per listing, in
// catalog order. The collection carries the bounding box of all points.
func ListingsFeatureCollection(listings []models.Listing) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	if len(listings) == 0 {
		return fc
	}

	points := make(orb.MultiPoint, 0, len(listings))
	for _, l := range listings {
		p := ListingPoint(l)
		points = append(points, p)

		feature := geojson.NewFeature(p)
		feature.ID = l.ID
		feature.Properties = geojson.Properties{
			"id":           l.ID,
			"title":        l.Title,
			"price":        l.Price,
			"type":         string(l.Type),
			"is_available": l.IsAvailable,
			"location":     l.Location,
		}
		fc.Append(feature)
	}

	fc.BBox = geojson.NewBBox(points.Bound())
	return fc
}

// CityOf returns the city part of a listing location such as
// "Nakuru, Kenya".
func CityOf(location string) string {
	city, _, _ := strings.Cut(location, ",")
	return strings.TrimSpace(city)
}

// CoverageFeatureCollection renders, per city, the convex hull around its
// listings. Cities with fewer than three distinct points are skipped.
// Features are ordered by city name.
func CoverageFeatureCollection(listings []models.Listing) *geojson.FeatureCollection {
	byCity := make(map[string][]orb.Point)
	for _, l := range listings {
		city := CityOf(l.Location)
		byCity[city] = append(byCity[city], ListingPoint(l))
	}

	cities := make([]string, 0, len(byCity))
	for city := range byCity {
		cities = append(cities, city)
	}
	sort.Strings(cities)

	fc := geojson.NewFeatureCollection()
	for _, city := range cities {
		points := byCity[city]
		hull := convexHull(points)
		if hull == nil {
			continue
		}

		feature := geojson.NewFeature(orb.Polygon{hull})
		feature.Properties = geojson.Properties{
			"city":          city,
			"listing_count": len(points),
			"hull_type":     "convex",
		}
		fc.Append(feature)
	}
	return fc
}

// convexHull returns the closed counter-clockwise hull ring of points
// (monotone chain), or nil when the points do not span an area.
func convexHull(points []orb.Point) orb.Ring {
	pts := append([]orb.Point(nil), points...)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i][0] != pts[j][0] {
			return pts[i][0] < pts[j][0]
		}
		return pts[i][1] < pts[j][1]
	})

	unique := pts[:0]
	for i, p := range pts {
		if i == 0 || !p.Equal(pts[i-1]) {
			unique = append(unique, p)
		}
	}
	if len(unique) < 3 {
		return nil
	}

	hull := make([]orb.Point, 0, 2*len(unique))
	// lower chain
	for _, p := range unique {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	// upper chain
	lower := len(hull) + 1
	for i := len(unique) - 2; i >= 0; i-- {
		p := unique[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}

	// collinear input collapses to a segment
	if len(hull) < 4 {
		return nil
	}
	return orb.Ring(hull)
}

func cross(o, a, b orb.Point) float64 {
	return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
}
