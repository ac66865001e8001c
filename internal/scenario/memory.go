package scenario

import (
	"context"
	"fmt"
	"sync"

	"github.com/fleetlab/dispatch-live/internal/models"
)

// MemoryStore keeps scenarios in process memory. It is the default store and
// the one tests use.
type MemoryStore struct {
	mu        sync.RWMutex
	scenarios map[string]models.Scenario
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{scenarios: make(map[string]models.Scenario)}
}

// Insert adds a new scenario; the id must not exist yet.
func (s *MemoryStore) Insert(ctx context.Context, scenario models.Scenario) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.scenarios[scenario.ID]; ok {
		return fmt.Errorf("scenario %s already exists", scenario.ID)
	}
	s.scenarios[scenario.ID] = cloneScenario(scenario)
	return nil
}

// Get returns a copy of the stored scenario or ErrNotFound.
func (s *MemoryStore) Get(ctx context.Context, id string) (*models.Scenario, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	scenario, ok := s.scenarios[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneScenario(scenario)
	return &out, nil
}

// Update replaces a stored scenario or returns ErrNotFound.
func (s *MemoryStore) Update(ctx context.Context, scenario models.Scenario) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.scenarios[scenario.ID]; !ok {
		return ErrNotFound
	}
	s.scenarios[scenario.ID] = cloneScenario(scenario)
	return nil
}

// cloneScenario deep-copies slices and pointer fields so callers can never
// alias stored state.
func cloneScenario(s models.Scenario) models.Scenario {
	out := s
	out.StartTime = cloneStr(s.StartTime)
	out.EndTime = cloneStr(s.EndTime)
	out.Vehicles = make([]models.Vehicle, len(s.Vehicles))
	for i, v := range s.Vehicles {
		v.VehicleSpeed = cloneFloat(v.VehicleSpeed)
		v.CustomerID = cloneStr(v.CustomerID)
		v.RemainingTravelTime = cloneFloat(v.RemainingTravelTime)
		v.DistanceTravelled = cloneFloat(v.DistanceTravelled)
		v.ActiveTime = cloneFloat(v.ActiveTime)
		v.NumberOfTrips = cloneInt(v.NumberOfTrips)
		out.Vehicles[i] = v
	}
	out.Customers = append([]models.Customer(nil), s.Customers...)
	return out
}

func cloneStr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
