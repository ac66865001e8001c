// Package view holds the client side of the snapshot stream: it reconciles
// incoming scenario snapshots into local state, keeps per-vehicle
// interpolation anchors, and produces render frames for a display sink on an
// independent tick.
package view

import (
	"time"

	"github.com/fleetlab/dispatch-live/internal/models"
	"github.com/fleetlab/dispatch-live/internal/motion"
)

// State is the client-held mirror of one scenario plus the derived
// interpolation state, keyed by vehicle id. The scenario part is replaced
// wholesale on every snapshot; the motion table survives across snapshots for
// vehicles that persist.
type State struct {
	Scenario models.Scenario
	Motions  map[string]*motion.VehicleMotion
}

// NewState returns an empty client state.
func NewState() *State {
	return &State{Motions: make(map[string]*motion.VehicleMotion)}
}

// Reconcile merges an incoming snapshot into the state: the scenario is
// replaced in full, every vehicle's anchor and target are rebased from its
// authoritative snapshot position, and motion state of vehicles that
// disappeared is dropped. It reports whether the snapshot is terminal, i.e.
// no customer is awaiting service anymore.
func (s *State) Reconcile(incoming models.Scenario, now time.Time) bool {
	s.Scenario = incoming

	seen := make(map[string]struct{}, len(incoming.Vehicles))
	for i := range incoming.Vehicles {
		v := incoming.Vehicles[i]
		seen[v.ID] = struct{}{}

		m, ok := s.Motions[v.ID]
		if !ok {
			m = &motion.VehicleMotion{}
			s.Motions[v.ID] = m
		}
		m.Rebase(v, incoming.Customers, now)
	}

	for id := range s.Motions {
		if _, ok := seen[id]; !ok {
			delete(s.Motions, id)
		}
	}

	return incoming.AllServed()
}

// visibleCustomer reports whether a customer should be rendered on its own.
// A customer that is no longer awaiting service, or that sits inside a
// vehicle (some vehicle references it and is co-located with it), is hidden.
func (s *State) visibleCustomer(c models.Customer) bool {
	if !c.AwaitingService {
		return false
	}
	for i := range s.Scenario.Vehicles {
		v := s.Scenario.Vehicles[i]
		if v.CustomerID != nil && *v.CustomerID == c.ID && v.Position() == c.Position() {
			return false
		}
	}
	return true
}
