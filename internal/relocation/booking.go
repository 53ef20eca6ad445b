package relocation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"nestlink/server/internal/models"
)

var (
	ErrVehicleRequired   = errors.New("please select a vehicle type first")
	ErrUnknownVehicle    = errors.New("unknown vehicle")
	ErrLocationsRequired = errors.New("please enter both pickup and destination locations")
)

// DistanceResolver measures the distance between two free-text places.
// *geocoding.Geocoder satisfies it.
type DistanceResolver interface {
	DistanceKm(from, to string) (float64, error)
}

type Request struct {
	VehicleID   string `json:"vehicle_id"`
	Pickup      string `json:"pickup"`
	Destination string `json:"destination"`
}

type Booker struct {
	fleet     []models.Vehicle
	distances DistanceResolver
	logger    *logrus.Logger
	now       func() time.Time
}

// NewBooker creates a booker over fleet. distances may be nil, in which
// case bookings carry no distance.
func NewBooker(fleet []models.Vehicle, distances DistanceResolver, logger *logrus.Logger) *Booker {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	if len(fleet) == 0 {
		fleet = DefaultFleet()
	}
	return &Booker{
		fleet:     fleet,
		distances: distances,
		logger:    logger,
		now:       time.Now,
	}
}

// Vehicles returns a copy of the fleet.
func (b *Booker) Vehicles() []models.Vehicle {
	return append([]models.Vehicle{}, b.fleet...)
}

// Book turns a request into a relocation payment item priced at the
// vehicle's flat rate. Nothing is queued; the caller adds the item to the
// payment store.
func (b *Booker) Book(req Request) (models.PaymentItem, error) {
	vehicleID := strings.TrimSpace(req.VehicleID)
	if vehicleID == "" {
		return models.PaymentItem{}, ErrVehicleRequired
	}
	vehicle, ok := findVehicle(b.fleet, vehicleID)
	if !ok {
		return models.PaymentItem{}, fmt.Errorf("%w: %q", ErrUnknownVehicle, vehicleID)
	}

	pickup := strings.TrimSpace(req.Pickup)
	destination := strings.TrimSpace(req.Destination)
	if pickup == "" || destination == "" {
		return models.PaymentItem{}, ErrLocationsRequired
	}

	meta := models.RelocationMetadata{
		Vehicle:     vehicle,
		Pickup:      pickup,
		Destination: destination,
		Timestamp:   b.now(),
	}

	log := b.logger.WithFields(logrus.Fields{
		"vehicle":     vehicle.Name,
		"pickup":      pickup,
		"destination": destination,
	})

	if b.distances != nil {
		km, err := b.distances.DistanceKm(pickup, destination)
		if err != nil {
			log.WithError(err).Debug("Distance unavailable for booking")
		} else {
			meta.DistanceKm = &km
		}
	}

	log.Info("Booked relocation vehicle")

	return models.PaymentItem{
		ID:          uuid.NewString(),
		Type:        models.PaymentRelocation,
		Amount:      vehicle.Price,
		Description: fmt.Sprintf("%s - %s to %s", vehicle.Name, pickup, destination),
		Metadata:    meta,
	}, nil
}
