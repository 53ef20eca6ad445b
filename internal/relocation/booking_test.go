package relocation

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nestlink/server/internal/geocoding"
	"nestlink/server/internal/models"
)

func TestDefaultFleet(t *testing.T) {
	fleet := DefaultFleet()
	require.Len(t, fleet, 3)

	prices := map[string]int{}
	for _, v := range fleet {
		prices[v.Name] = v.Price
	}
	assert.Equal(t, map[string]int{
		"Small Pickup": 1500,
		"Medium Van":   2500,
		"Large Truck":  4000,
	}, prices)
}

func TestBooker_Book(t *testing.T) {
	b := NewBooker(nil, geocoding.NewGeocoder(logrus.New()), logrus.New())
	fixed := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return fixed }

	item, err := b.Book(Request{VehicleID: "2", Pickup: "Kilimani", Destination: " Karen "})
	require.NoError(t, err)

	assert.NotEmpty(t, item.ID)
	assert.Equal(t, models.PaymentRelocation, item.Type)
	assert.Equal(t, 2500, item.Amount)
	assert.Equal(t, "Medium Van - Kilimani to Karen", item.Description)

	meta, ok := item.Metadata.(models.RelocationMetadata)
	require.True(t, ok)
	assert.Equal(t, "Medium Van", meta.Vehicle.Name)
	assert.Equal(t, "Karen", meta.Destination)
	assert.Equal(t, fixed, meta.Timestamp)
	require.NotNil(t, meta.DistanceKm)
	assert.InDelta(t, 9, *meta.DistanceKm, 3)
}

func TestBooker_BookByType(t *testing.T) {
	b := NewBooker(nil, nil, nil)

	item, err := b.Book(Request{VehicleID: "truck", Pickup: "Westlands", Destination: "Runda"})
	require.NoError(t, err)
	assert.Equal(t, 4000, item.Amount)

	meta := item.Metadata.(models.RelocationMetadata)
	assert.Nil(t, meta.DistanceKm, "no resolver means no distance")
}

func TestBooker_UnknownPlaceHasNoDistance(t *testing.T) {
	b := NewBooker(nil, geocoding.NewGeocoder(nil), nil)

	item, err := b.Book(Request{VehicleID: "1", Pickup: "Block 4, Gate B", Destination: "Karen"})
	require.NoError(t, err)
	assert.Equal(t, "Small Pickup - Block 4, Gate B to Karen", item.Description)
	assert.Nil(t, item.Metadata.(models.RelocationMetadata).DistanceKm)
}

func TestBooker_Validation(t *testing.T) {
	b := NewBooker(nil, nil, nil)

	tests := []struct {
		name string
		req  Request
		err  error
	}{
		{name: "No vehicle", req: Request{Pickup: "A", Destination: "B"}, err: ErrVehicleRequired},
		{name: "Unknown vehicle", req: Request{VehicleID: "9", Pickup: "A", Destination: "B"}, err: ErrUnknownVehicle},
		{name: "No pickup", req: Request{VehicleID: "1", Destination: "B"}, err: ErrLocationsRequired},
		{name: "Blank destination", req: Request{VehicleID: "1", Pickup: "A", Destination: "  "}, err: ErrLocationsRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.Book(tt.req)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestBooker_VehiclesIsACopy(t *testing.T) {
	b := NewBooker(nil, nil, nil)
	v := b.Vehicles()
	v[0].Price = 1
	assert.Equal(t, 1500, b.Vehicles()[0].Price)
}
