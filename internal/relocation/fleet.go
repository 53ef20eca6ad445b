package relocation

import (
	"strings"

	"nestlink/server/internal/models"
)

// DefaultFleet returns the vehicles offered on the relocation screen,
// smallest first.
func DefaultFleet() []models.Vehicle {
	return []models.Vehicle{
		{
			ID:       "1",
			Type:     models.VehiclePickup,
			Name:     "Small Pickup",
			Capacity: "Up to 1 room",
			Price:    1500,
			ETA:      "15 min",
			Rating:   4.8,
			Reviews:  124,
		},
		{
			ID:       "2",
			Type:     models.VehicleVan,
			Name:     "Medium Van",
			Capacity: "Up to 2 rooms",
			Price:    2500,
			ETA:      "20 min",
			Rating:   4.6,
			Reviews:  89,
		},
		{
			ID:       "3",
			Type:     models.VehicleTruck,
			Name:     "Large Truck",
			Capacity: "3+ rooms",
			Price:    4000,
			ETA:      "25 min",
			Rating:   4.9,
			Reviews:  156,
		},
	}
}

// findVehicle matches on id first and falls back to the vehicle type, so
// "van" and "2" pick the same vehicle.
func findVehicle(fleet []models.Vehicle, key string) (models.Vehicle, bool) {
	for _, v := range fleet {
		if v.ID == key {
			return v, true
		}
	}
	for _, v := range fleet {
		if strings.EqualFold(string(v.Type), key) {
			return v, true
		}
	}
	return models.Vehicle{}, false
}
