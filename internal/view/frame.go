package view

import (
	"time"

	"github.com/fleetlab/dispatch-live/internal/models"
	"github.com/fleetlab/dispatch-live/internal/motion"
)

// RenderedVehicle is one vehicle's interpolated position and motion phase.
type RenderedVehicle struct {
	ID       string          `json:"id"`
	Position models.Location `json:"position"`
	Phase    motion.Phase    `json:"phase"`
}

// RenderedCustomer is one currently visible (awaiting, not picked up)
// customer and its position.
type RenderedCustomer struct {
	ID       string          `json:"id"`
	Position models.Location `json:"position"`
}

// Frame is what the display receives on every render tick.
type Frame struct {
	ScenarioID string             `json:"scenarioId"`
	At         time.Time          `json:"at"`
	Vehicles   []RenderedVehicle  `json:"vehicles"`
	Customers  []RenderedCustomer `json:"customers"`
}

// Sink accepts render frames. Implementations must not retain the frame's
// slices beyond the call.
type Sink interface {
	Render(Frame)
}

// Frame builds a render frame for the given wall-clock instant. Vehicle
// order follows the snapshot's vehicle order.
func (s *State) Frame(now time.Time, speedFactor float64) Frame {
	f := Frame{
		ScenarioID: s.Scenario.ID,
		At:         now,
		Vehicles:   make([]RenderedVehicle, 0, len(s.Scenario.Vehicles)),
	}

	for i := range s.Scenario.Vehicles {
		v := s.Scenario.Vehicles[i]
		m, ok := s.Motions[v.ID]
		if !ok {
			continue
		}
		f.Vehicles = append(f.Vehicles, RenderedVehicle{
			ID:       v.ID,
			Position: m.PositionAt(now, speedFactor),
			Phase:    m.Phase,
		})
	}

	for i := range s.Scenario.Customers {
		c := s.Scenario.Customers[i]
		if !s.visibleCustomer(c) {
			continue
		}
		f.Customers = append(f.Customers, RenderedCustomer{ID: c.ID, Position: c.Position()})
	}

	return f
}
