// Package motion turns sparse scenario snapshots into continuous vehicle
// movement: it resolves where each vehicle is currently headed and
// interpolates its rendered position between snapshot arrivals.
package motion

import (
	"github.com/fleetlab/dispatch-live/internal/models"
)

// Phase is a vehicle's current motion intent.
type Phase string

const (
	// PhaseIdle means the vehicle has no assignment and holds position.
	PhaseIdle Phase = "idle"
	// PhasePickup means the vehicle is en route to its customer.
	PhasePickup Phase = "pickup"
	// PhaseDropoff means the customer is on board and the vehicle is en
	// route to the customer's destination.
	PhaseDropoff Phase = "dropoff"
)

// ResolveTarget decides a vehicle's current travel destination and phase from
// the customer set of the same snapshot.
//
// An available vehicle is idle at its own position. An unavailable vehicle
// heads to its assigned customer's pickup point, or, once co-located with the
// customer, to the customer's destination. A dangling customer reference is a
// data-integrity fault in the upstream snapshot; the vehicle degrades to idle
// rather than failing the whole reconciliation.
func ResolveTarget(vehicle models.Vehicle, customers []models.Customer) (models.Location, Phase) {
	if vehicle.IsAvailable || vehicle.CustomerID == nil {
		return vehicle.Position(), PhaseIdle
	}

	for i := range customers {
		c := &customers[i]
		if c.ID != *vehicle.CustomerID {
			continue
		}
		if c.Position() == vehicle.Position() {
			return c.Destination(), PhaseDropoff
		}
		return c.Position(), PhasePickup
	}

	// Referenced customer missing from the snapshot.
	return vehicle.Position(), PhaseIdle
}
