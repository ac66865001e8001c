// Package sim is the local simulation engine: it advances launched scenarios
// tick by tick, assigning idle vehicles to awaiting customers and moving
// vehicles toward their targets. The stream gateway treats this engine as an
// opaque upstream; it can be swapped for any service speaking the same
// scenario API.
package sim

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/fleetlab/dispatch-live/internal/geo"
	"github.com/fleetlab/dispatch-live/internal/models"
	"github.com/fleetlab/dispatch-live/internal/motion"
	"github.com/fleetlab/dispatch-live/internal/scenario"
)

// defaultSpeed is the cruising speed in m/s used when a vehicle was injected
// without one.
const defaultSpeed = 10.0

// Engine advances launched scenarios against a scenario store.
type Engine struct {
	store scenario.Store
	tick  time.Duration

	mu   sync.Mutex
	runs map[string]context.CancelFunc
}

// NewEngine creates an engine stepping scenarios every tick.
func NewEngine(store scenario.Store, tick time.Duration) *Engine {
	if tick <= 0 {
		tick = 100 * time.Millisecond
	}
	return &Engine{
		store: store,
		tick:  tick,
		runs:  make(map[string]context.CancelFunc),
	}
}

// Launch marks a scenario as running and starts its advance loop at the given
// simulation-speed multiplier. It returns the RFC 3339 start time.
func (e *Engine) Launch(ctx context.Context, id string, speed float64) (string, error) {
	if speed <= 0 {
		speed = 1
	}

	s, err := e.store.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if s.Status == models.StatusRunning {
		return "", fmt.Errorf("scenario %s is already running", id)
	}

	start := time.Now().UTC().Format(time.RFC3339)
	s.Status = models.StatusRunning
	s.StartTime = &start
	if err := e.store.Update(ctx, *s); err != nil {
		return "", err
	}

	rctx, cancel := context.WithCancel(context.Background())
	e.mu.Lock()
	e.runs[id] = cancel
	e.mu.Unlock()

	log.WithFields(log.Fields{
		"scenario_id": id,
		"speed":       speed,
		"vehicles":    len(s.Vehicles),
		"customers":   len(s.Customers),
	}).Info("scenario launched")

	go e.run(rctx, id, speed)
	return start, nil
}

// Stop cancels a running scenario's advance loop. Unknown ids are ignored.
func (e *Engine) Stop(id string) {
	e.mu.Lock()
	cancel, ok := e.runs[id]
	delete(e.runs, id)
	e.mu.Unlock()
	if ok {
		cancel()
	}
}

// StopAll cancels every advance loop. Used on shutdown.
func (e *Engine) StopAll() {
	e.mu.Lock()
	for id, cancel := range e.runs {
		cancel()
		delete(e.runs, id)
	}
	e.mu.Unlock()
}

func (e *Engine) run(ctx context.Context, id string, speed float64) {
	defer e.Stop(id)

	ticker := time.NewTicker(e.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s, err := e.store.Get(ctx, id)
			if err != nil {
				log.WithError(err).WithField("scenario_id", id).Error("load scenario for tick")
				return
			}

			Advance(s, e.tick.Seconds()*speed)

			if s.AllServed() {
				end := time.Now().UTC().Format(time.RFC3339)
				s.Status = models.StatusCompleted
				s.EndTime = &end
				if err := e.store.Update(ctx, *s); err != nil {
					log.WithError(err).WithField("scenario_id", id).Error("save completed scenario")
				}
				log.WithField("scenario_id", id).Info("scenario completed")
				return
			}

			if err := e.store.Update(ctx, *s); err != nil {
				log.WithError(err).WithField("scenario_id", id).Error("save scenario tick")
				return
			}
		}
	}
}

// Advance steps the scenario by dt simulated seconds: it assigns idle
// vehicles to the nearest awaiting customers, then moves every assigned
// vehicle toward its current target.
func Advance(s *models.Scenario, dt float64) {
	assign(s)

	for i := range s.Vehicles {
		moveVehicle(s, &s.Vehicles[i], dt)
	}
}

// assign greedily pairs each available vehicle with the nearest awaiting
// customer that no vehicle is serving yet.
func assign(s *models.Scenario) {
	claimed := make(map[string]struct{})
	for i := range s.Vehicles {
		if s.Vehicles[i].CustomerID != nil {
			claimed[*s.Vehicles[i].CustomerID] = struct{}{}
		}
	}

	for i := range s.Vehicles {
		v := &s.Vehicles[i]
		if !v.IsAvailable {
			continue
		}

		var best *models.Customer
		bestDist := math.Inf(1)
		for j := range s.Customers {
			c := &s.Customers[j]
			if !c.AwaitingService {
				continue
			}
			if _, taken := claimed[c.ID]; taken {
				continue
			}
			if d := geo.Distance(v.Position(), c.Position()); d < bestDist {
				best, bestDist = c, d
			}
		}
		if best == nil {
			continue
		}

		id := best.ID
		v.IsAvailable = false
		v.CustomerID = &id
		if v.VehicleSpeed == nil {
			speed := defaultSpeed
			v.VehicleSpeed = &speed
		}
		remaining := bestDist / *v.VehicleSpeed
		v.RemainingTravelTime = &remaining
		claimed[id] = struct{}{}
	}
}

func moveVehicle(s *models.Scenario, v *models.Vehicle, dt float64) {
	if v.IsAvailable || v.CustomerID == nil {
		return
	}

	target, phase := motion.ResolveTarget(*v, s.Customers)
	if phase == motion.PhaseIdle {
		// Dangling assignment, nothing to drive toward.
		return
	}

	customer := s.CustomerByID(*v.CustomerID)
	speed := v.Speed()
	if speed <= 0 {
		speed = defaultSpeed
	}

	dist := geo.Distance(v.Position(), target)
	step := speed * dt

	if step >= dist {
		v.SetPosition(target)
		addFloat(&v.DistanceTravelled, dist)
		addFloat(&v.ActiveTime, dt)

		if phase == motion.PhaseDropoff {
			// Trip done: drop the customer and free the vehicle.
			customer.SetPosition(target)
			customer.AwaitingService = false
			v.IsAvailable = true
			v.CustomerID = nil
			v.RemainingTravelTime = nil
			addInt(&v.NumberOfTrips, 1)
			return
		}

		// Arrived at the pickup point; the onward leg starts next tick.
		onward := geo.Distance(customer.Position(), customer.Destination()) / speed
		v.RemainingTravelTime = &onward
		return
	}

	fraction := step / dist
	from := v.Position()
	pos := models.Location{
		Lat: from.Lat + (target.Lat-from.Lat)*fraction,
		Lon: from.Lon + (target.Lon-from.Lon)*fraction,
	}
	v.SetPosition(pos)
	if phase == motion.PhaseDropoff {
		// The customer rides along.
		customer.SetPosition(pos)
	}

	remaining := (dist - step) / speed
	v.RemainingTravelTime = &remaining
	addFloat(&v.DistanceTravelled, step)
	addFloat(&v.ActiveTime, dt)
}

func addFloat(p **float64, delta float64) {
	v := delta
	if *p != nil {
		v += **p
	}
	*p = &v
}

func addInt(p **int, delta int) {
	v := delta
	if *p != nil {
		v += **p
	}
	*p = &v
}
