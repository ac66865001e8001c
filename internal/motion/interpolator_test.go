package motion

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fleetlab/dispatch-live/internal/models"
)

func floatPtr(f float64) *float64 { return &f }

func movingVehicle(speed *float64, remaining *float64) models.Vehicle {
	return models.Vehicle{
		ID:                  "v1",
		CoordX:              48.1351,
		CoordY:              11.5825,
		VehicleSpeed:        speed,
		CustomerID:          strPtr("c1"),
		RemainingTravelTime: remaining,
	}
}

func pickupCustomer() models.Customer {
	return models.Customer{
		ID: "c1", CoordX: 48.1400, CoordY: 11.6000,
		DestinationX: 48.1500, DestinationY: 11.6100,
		AwaitingService: true,
	}
}

func TestPositionAt_NoElapsedTimeHoldsAnchor(t *testing.T) {
	now := time.Now()
	var m VehicleMotion
	// Remaining estimate at least as large as the trip needs: with no
	// elapsed time the rendered position is exactly the anchor.
	m.Rebase(movingVehicle(floatPtr(10), floatPtr(600)), []models.Customer{pickupCustomer()}, now)

	pos := m.PositionAt(now, 1)
	assert.Equal(t, m.Anchor, pos)
}

func TestPositionAt_AdvancesTowardTarget(t *testing.T) {
	now := time.Now()
	var m VehicleMotion
	m.Rebase(movingVehicle(floatPtr(10), floatPtr(120)), []models.Customer{pickupCustomer()}, now)

	pos := m.PositionAt(now.Add(5*time.Second), 1)
	assert.NotEqual(t, m.Anchor, pos)
	// Rendered position stays on the segment between anchor and target.
	assert.GreaterOrEqual(t, pos.Lat, m.Anchor.Lat)
	assert.LessOrEqual(t, pos.Lat, m.Target.Lat)
	assert.GreaterOrEqual(t, pos.Lon, m.Anchor.Lon)
	assert.LessOrEqual(t, pos.Lon, m.Target.Lon)
}

func TestPositionAt_ClampsAtTarget(t *testing.T) {
	now := time.Now()
	var m VehicleMotion
	// Remaining estimate far smaller than the trip needs: stale upstream
	// timing must pin the rendered position at the target, never beyond.
	m.Rebase(movingVehicle(floatPtr(10), floatPtr(1)), []models.Customer{pickupCustomer()}, now)

	pos := m.PositionAt(now.Add(time.Hour), 1)
	assert.Equal(t, m.Target, pos)
}

func TestPositionAt_SpeedFactorScalesElapsedTime(t *testing.T) {
	now := time.Now()
	var m VehicleMotion
	m.Rebase(movingVehicle(floatPtr(10), floatPtr(120)), []models.Customer{pickupCustomer()}, now)

	// With a 2x simulation-speed factor, wall-clock time counts half:
	// 10 wall seconds at factor 2 equal 5 wall seconds at factor 1.
	fast := m.PositionAt(now.Add(10*time.Second), 2)
	slow := m.PositionAt(now.Add(5*time.Second), 1)
	assert.InDelta(t, slow.Lat, fast.Lat, 1e-12)
	assert.InDelta(t, slow.Lon, fast.Lon, 1e-12)
}

func TestPositionAt_NilSpeedHoldsAnchor(t *testing.T) {
	now := time.Now()
	var m VehicleMotion
	m.Rebase(movingVehicle(nil, floatPtr(120)), []models.Customer{pickupCustomer()}, now)

	pos := m.PositionAt(now.Add(time.Minute), 1)
	assert.Equal(t, m.Anchor, pos)
	assert.False(t, math.IsNaN(pos.Lat))
	assert.False(t, math.IsNaN(pos.Lon))
}

func TestPositionAt_ZeroSpeedHoldsAnchor(t *testing.T) {
	now := time.Now()
	var m VehicleMotion
	m.Rebase(movingVehicle(floatPtr(0), floatPtr(120)), []models.Customer{pickupCustomer()}, now)

	pos := m.PositionAt(now.Add(time.Minute), 1)
	assert.Equal(t, m.Anchor, pos)
}

func TestPositionAt_NilRemainingHoldsAnchor(t *testing.T) {
	now := time.Now()
	var m VehicleMotion
	m.Rebase(movingVehicle(floatPtr(10), nil), []models.Customer{pickupCustomer()}, now)

	pos := m.PositionAt(now.Add(time.Minute), 1)
	assert.Equal(t, m.Anchor, pos)
}

func TestPositionAt_ZeroTripDistanceHoldsAnchor(t *testing.T) {
	now := time.Now()
	vehicle := movingVehicle(floatPtr(10), floatPtr(60))
	// Customer pickup exactly at the vehicle position and destination too:
	// the trip has zero length.
	customer := models.Customer{
		ID: "c1", CoordX: vehicle.CoordX, CoordY: vehicle.CoordY,
		DestinationX: vehicle.CoordX, DestinationY: vehicle.CoordY,
		AwaitingService: true,
	}
	var m VehicleMotion
	m.Rebase(vehicle, []models.Customer{customer}, now)

	pos := m.PositionAt(now.Add(time.Minute), 1)
	assert.Equal(t, m.Anchor, pos)
	assert.False(t, math.IsNaN(pos.Lat))
}

func TestRebase_ResetsAnchorAndTarget(t *testing.T) {
	now := time.Now()
	var m VehicleMotion
	m.Rebase(movingVehicle(floatPtr(10), floatPtr(120)), []models.Customer{pickupCustomer()}, now)

	assert.Equal(t, PhasePickup, m.Phase)
	assert.Equal(t, models.Location{Lat: 48.1351, Lon: 11.5825}, m.Anchor)
	assert.Equal(t, models.Location{Lat: 48.1400, Lon: 11.6000}, m.Target)
	assert.Equal(t, 10.0, m.Speed)
	assert.True(t, m.Valid)
	assert.Equal(t, now, m.SnapshotAt)
}
