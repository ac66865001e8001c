package motion

import (
	"math"
	"time"

	"github.com/fleetlab/dispatch-live/internal/geo"
	"github.com/fleetlab/dispatch-live/internal/models"
)

// VehicleMotion holds the interpolation state of a single vehicle between two
// snapshot arrivals. Anchor is the position the vehicle occupied when its
// current target was established; every rendered position lies on the
// straight line from Anchor to Target.
//
// The snapshot handler is the sole writer of this struct; the render tick
// only reads it through PositionAt.
type VehicleMotion struct {
	Anchor models.Location
	Target models.Location
	Phase  Phase

	// Remaining is the engine-reported travel time estimate in seconds at
	// the moment of the snapshot. Valid is false when the engine sent null.
	Remaining float64
	Valid     bool

	// Speed is the cruising speed in meters per second, 0 when unreported.
	Speed float64

	// SnapshotAt is the wall-clock time the snapshot was applied.
	SnapshotAt time.Time
}

// PositionAt returns the interpolated position at the given wall-clock time.
// speedFactor is the simulation-speed multiplier: wall-clock elapsed time is
// divided by it before being compared against simulated travel time.
//
// Every numeric degeneracy (unreported speed, zero trip distance, missing
// remaining-time estimate, non-finite intermediate) holds the vehicle at its
// anchor instead of leaking NaN or Infinity to the rendering sink. The
// interpolation fraction is clamped so stale upstream timing can never push
// the rendered position past the target.
func (m *VehicleMotion) PositionAt(now time.Time, speedFactor float64) models.Location {
	if m.Phase == PhaseIdle || !m.Valid || m.Speed <= 0 || speedFactor <= 0 {
		return m.Anchor
	}

	tripDistance := geo.Distance(m.Target, m.Anchor)
	if tripDistance == 0 {
		return m.Anchor
	}

	tripSeconds := tripDistance / m.Speed
	if math.IsNaN(tripSeconds) || math.IsInf(tripSeconds, 0) || tripSeconds <= 0 {
		return m.Anchor
	}

	elapsedSim := now.Sub(m.SnapshotAt).Seconds() / speedFactor
	remaining := math.Max(0, m.Remaining-elapsedSim)

	progress := 1 - remaining/tripSeconds
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}

	return models.Location{
		Lat: m.Anchor.Lat + (m.Target.Lat-m.Anchor.Lat)*progress,
		Lon: m.Anchor.Lon + (m.Target.Lon-m.Anchor.Lon)*progress,
	}
}

// Rebase resets the interpolation anchor from a fresh snapshot of the
// vehicle. The previously interpolated position is intentionally discarded in
// favor of the authoritative snapshot position; the resulting correction jump
// is small because the snapshot cadence is short relative to trip duration.
func (m *VehicleMotion) Rebase(vehicle models.Vehicle, customers []models.Customer, now time.Time) {
	m.Anchor = vehicle.Position()
	m.Target, m.Phase = ResolveTarget(vehicle, customers)
	m.Speed = vehicle.Speed()
	m.SnapshotAt = now

	if vehicle.RemainingTravelTime != nil {
		m.Remaining = *vehicle.RemainingTravelTime
		m.Valid = true
	} else {
		m.Remaining = 0
		m.Valid = false
	}
}
