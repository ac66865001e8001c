package models

// Scenario lifecycle states as reported by the simulation engine.
const (
	StatusCreated   = "CREATED"
	StatusRunning   = "RUNNING"
	StatusCompleted = "COMPLETED"
)

// Scenario is one complete snapshot of a dispatch simulation: every vehicle
// and every customer at a single point in simulated time. Snapshots are
// produced wholesale by the engine on each poll; consumers never mutate them.
type Scenario struct {
	ID        string     `bson:"_id" json:"id"`
	StartTime *string    `bson:"startTime" json:"startTime"`
	EndTime   *string    `bson:"endTime" json:"endTime"`
	Status    string     `bson:"status" json:"status"`
	Vehicles  []Vehicle  `bson:"vehicles" json:"vehicles"`
	Customers []Customer `bson:"customers" json:"customers"`
}

// CustomerByID returns the customer with the given id, or nil.
func (s *Scenario) CustomerByID(id string) *Customer {
	for i := range s.Customers {
		if s.Customers[i].ID == id {
			return &s.Customers[i]
		}
	}
	return nil
}

// VehicleByID returns the vehicle with the given id, or nil.
func (s *Scenario) VehicleByID(id string) *Vehicle {
	for i := range s.Vehicles {
		if s.Vehicles[i].ID == id {
			return &s.Vehicles[i]
		}
	}
	return nil
}

// AllServed reports whether no customer is awaiting service anymore. A
// scenario in this state is terminal regardless of vehicle state.
func (s *Scenario) AllServed() bool {
	for i := range s.Customers {
		if s.Customers[i].AwaitingService {
			return false
		}
	}
	return true
}
