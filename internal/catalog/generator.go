package catalog

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"nestlink/server/config"
	"nestlink/server/internal/models"
)

// Types listings are generated with, in draw order
var Types = []models.PropertyType{
	models.PropertyApartment,
	models.PropertyHouse,
	models.PropertyRoom,
	models.PropertyStudio,
	models.PropertyHostel,
}

// Amenities offered by generated listings. A listing gets a prefix of it.
var Amenities = []string{"Wi-Fi", "Parking", "Pool", "Gym", "Kitchen", "AC"}

const (
	minPrice = 10000
	maxPrice = 60000

	// Coordinates are spread over a box this many degrees wide around the
	// city centre
	coordinateSpread = 0.1
)

// Generator produces synthetic listings. It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
	now func() time.Time
}

// NewGenerator returns a generator drawing from rnd. A nil rnd is seeded
// from the clock.
func NewGenerator(rnd *rand.Rand) *Generator {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{rnd: rnd, now: time.Now}
}

// Generate returns count fresh listings with ids listing-1..listing-count.
func (g *Generator) Generate(count int) []models.Listing {
	if count <= 0 {
		return []models.Listing{}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	listings := make([]models.Listing, count)
	for i := range listings {
		listings[i] = g.listing(i, now)
	}
	return listings
}

func (g *Generator) listing(i int, now time.Time) models.Listing {
	propertyType := Types[g.rnd.Intn(len(Types))]
	city := config.SupportedCities[g.rnd.Intn(len(config.SupportedCities))]
	n := i + 1

	return models.Listing{
		ID:          fmt.Sprintf("listing-%d", n),
		Title:       fmt.Sprintf("%s in %s", capitalize(string(propertyType)), city.Name),
		Description: fmt.Sprintf("Beautiful %s located in the heart of %s. Perfect for short and long stays.", propertyType, city.Name),
		Price:       minPrice + g.rnd.Intn(maxPrice-minPrice),
		Location:    city.Name + ", Kenya",
		Coordinates: models.Coordinates{
			Latitude:  city.Center[0] + (g.rnd.Float64()-0.5)*coordinateSpread,
			Longitude: city.Center[1] + (g.rnd.Float64()-0.5)*coordinateSpread,
		},
		Type:      propertyType,
		Bedrooms:  1 + g.rnd.Intn(5),
		Bathrooms: 1 + g.rnd.Intn(3),
		Area:      50 + g.rnd.Intn(200),
		Amenities: append([]string(nil), Amenities[:1+g.rnd.Intn(len(Amenities))]...),
		Images: []string{
			fmt.Sprintf("https://picsum.photos/400/300?random=%d", n),
			fmt.Sprintf("https://picsum.photos/400/300?random=%d", n+1),
			fmt.Sprintf("https://picsum.photos/400/300?random=%d", n+2),
		},
		Host: models.User{
			ID:     fmt.Sprintf("user-%d", n),
			Name:   fmt.Sprintf("Host %d", n),
			Email:  fmt.Sprintf("host%d@example.com", n),
			IsHost: true,
		},
		Rating:      3 + g.rnd.Float64()*2,
		ReviewCount: g.rnd.Intn(100),
		IsAvailable: g.rnd.Float64() >= 0.2,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
