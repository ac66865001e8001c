package sim

import (
	"math"
	"math/rand"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fleetlab/dispatch-live/internal/models"
)

// Scenarios are generated around the Munich city center.
var munichCenter = models.Location{Lat: 48.13515, Lon: 11.5825}

// jitterLocation shifts a base location by up to the given number of meters
// in each axis.
func jitterLocation(base models.Location, meters float64, rng *rand.Rand) models.Location {
	latMetersPerDeg := 111320.0
	lonMetersPerDeg := 111320.0 * math.Cos(base.Lat*math.Pi/180)
	dLat := (rng.Float64()*2 - 1) * (meters / latMetersPerDeg)
	dLon := (rng.Float64()*2 - 1) * (meters / lonMetersPerDeg)
	return models.Location{Lat: base.Lat + dLat, Lon: base.Lon + dLon}
}

// NewRandomScenario creates an unstarted scenario with randomly placed
// vehicles and customers inside the city area.
func NewRandomScenario(numVehicles, numCustomers int, rng *rand.Rand) models.Scenario {
	s := models.Scenario{
		ID:        primitive.NewObjectID().Hex(),
		Status:    models.StatusCreated,
		Vehicles:  make([]models.Vehicle, 0, numVehicles),
		Customers: make([]models.Customer, 0, numCustomers),
	}

	for i := 0; i < numVehicles; i++ {
		pos := jitterLocation(munichCenter, 3000, rng)
		speed := 8 + rng.Float64()*6 // m/s, city traffic
		v := models.Vehicle{
			ID:           primitive.NewObjectID().Hex(),
			IsAvailable:  true,
			VehicleSpeed: &speed,
		}
		v.SetPosition(pos)
		s.Vehicles = append(s.Vehicles, v)
	}

	for i := 0; i < numCustomers; i++ {
		pickup := jitterLocation(munichCenter, 3000, rng)
		dest := jitterLocation(munichCenter, 3000, rng)
		c := models.Customer{
			ID:              primitive.NewObjectID().Hex(),
			DestinationX:    dest.Lat,
			DestinationY:    dest.Lon,
			AwaitingService: true,
		}
		c.SetPosition(pickup)
		s.Customers = append(s.Customers, c)
	}

	return s
}
