package geocoding

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/sirupsen/logrus"

	"nestlink/server/config"
)

var ErrPlaceNotFound = errors.New("place not found")

// Geocoder resolves free-text place names against the built-in gazetteer
// of supported cities and popular areas. It never leaves the process.
type Geocoder struct {
	logger    *logrus.Logger
	cache     map[string][]float64
	cacheLock sync.RWMutex
}

func NewGeocoder(logger *logrus.Logger) *Geocoder {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	g := &Geocoder{
		logger: logger,
		cache:  make(map[string][]float64),
	}

	for _, city := range config.SupportedCities {
		g.cache[config.NormalizeCity(city.Name)] = city.Center
	}
	for _, area := range config.PopularAreas {
		g.cache[config.NormalizeCity(area.Name)] = area.Center
	}

	g.logger.Debugf("Loaded %d gazetteer places", len(g.cache))
	return g
}

// Register adds or replaces a place. center is latitude, longitude.
func (g *Geocoder) Register(name string, latitude, longitude float64) {
	g.cacheLock.Lock()
	defer g.cacheLock.Unlock()
	g.cache[config.NormalizeCity(name)] = []float64{latitude, longitude}
}

// Geocode returns the point for a place such as "Westlands" or
// "Nakuru, Kenya". Comma separated parts are tried left to right so the most
// specific known part wins.
func (g *Geocoder) Geocode(place string) (orb.Point, error) {
	g.cacheLock.RLock()
	defer g.cacheLock.RUnlock()

	for _, part := range strings.Split(place, ",") {
		key := config.NormalizeCity(part)
		if key == "" {
			continue
		}
		if coords, ok := g.cache[key]; ok && len(coords) == 2 {
			// orb points are longitude first
			return orb.Point{coords[1], coords[0]}, nil
		}
	}

	g.logger.WithField("place", place).Debug("Place not in gazetteer")
	return orb.Point{}, fmt.Errorf("%w: %q", ErrPlaceNotFound, place)
}

// DistanceKm returns the great-circle distance between two places.
func (g *Geocoder) DistanceKm(from, to string) (float64, error) {
	a, err := g.Geocode(from)
	if err != nil {
		return 0, err
	}
	b, err := g.Geocode(to)
	if err != nil {
		return 0, err
	}

	km := geo.Distance(a, b) / 1000
	g.logger.WithFields(logrus.Fields{
		"from":        from,
		"to":          to,
		"distance_km": km,
	}).Debug("Computed distance")
	return km, nil
}
