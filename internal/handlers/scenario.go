// Package handlers exposes the simulation engine's scenario API over HTTP.
// The paths mirror the runner service the display stack was built against.
package handlers

import (
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/fleetlab/dispatch-live/internal/models"
	"github.com/fleetlab/dispatch-live/internal/scenario"
	"github.com/fleetlab/dispatch-live/internal/sim"
)

// ScenarioHandler handles scenario lifecycle requests.
type ScenarioHandler struct {
	store  scenario.Store
	engine *sim.Engine
}

// NewScenarioHandler creates a handler over the given store and engine.
func NewScenarioHandler(store scenario.Store, engine *sim.Engine) *ScenarioHandler {
	return &ScenarioHandler{store: store, engine: engine}
}

// Register wires all scenario routes onto the mux.
func (h *ScenarioHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /scenario/create", h.CreateScenario)
	mux.HandleFunc("POST /Scenarios/initialize_scenario", h.InitializeScenario)
	mux.HandleFunc("GET /Scenarios/get_scenario/{id}", h.GetScenario)
	mux.HandleFunc("PUT /Scenarios/update_scenario/{id}", h.UpdateScenario)
	mux.HandleFunc("POST /Runner/launch_scenario/{id}", h.LaunchScenario)
}

// CreateScenario generates a random unstarted scenario and stores it.
func (h *ScenarioHandler) CreateScenario(w http.ResponseWriter, r *http.Request) {
	numVehicles := queryInt(r, "numberOfVehicles", 5)
	numCustomers := queryInt(r, "numberOfCustomers", 10)
	if numVehicles < 1 || numCustomers < 1 {
		http.Error(w, "numberOfVehicles and numberOfCustomers must be positive", http.StatusBadRequest)
		return
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	s := sim.NewRandomScenario(numVehicles, numCustomers, rng)
	if err := h.store.Insert(r.Context(), s); err != nil {
		http.Error(w, "Failed to store scenario", http.StatusInternalServerError)
		return
	}

	log.WithFields(log.Fields{
		"scenario_id": s.ID,
		"vehicles":    numVehicles,
		"customers":   numCustomers,
	}).Info("scenario created")

	writeJSON(w, http.StatusOK, s)
}

// InitializeScenario registers an externally prepared scenario, typically a
// created scenario whose vehicle positions were edited by the caller.
func (h *ScenarioHandler) InitializeScenario(w http.ResponseWriter, r *http.Request) {
	var s models.Scenario
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if s.ID == "" {
		http.Error(w, "scenario id is required", http.StatusBadRequest)
		return
	}
	s.Status = models.StatusCreated

	// Replace an existing document of the same id, otherwise insert.
	err := h.store.Update(r.Context(), s)
	if errors.Is(err, scenario.ErrNotFound) {
		err = h.store.Insert(r.Context(), s)
	}
	if err != nil {
		http.Error(w, "Failed to store scenario", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"id": s.ID, "status": s.Status})
}

// GetScenario returns the latest snapshot of a scenario.
func (h *ScenarioHandler) GetScenario(w http.ResponseWriter, r *http.Request) {
	s, err := h.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, scenario.ErrNotFound) {
			http.Error(w, "scenario not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to load scenario", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// VehicleUpdate patches a single vehicle's customer assignment.
type VehicleUpdate struct {
	ID         string  `json:"id"`
	CustomerID *string `json:"customerId"`
}

// VehiclesUpdate is the manual assignment payload.
type VehiclesUpdate struct {
	Vehicles []VehicleUpdate `json:"vehicles"`
}

// UpdateScenario applies manual vehicle-to-customer assignments.
func (h *ScenarioHandler) UpdateScenario(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var update VehiclesUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	s, err := h.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, scenario.ErrNotFound) {
			http.Error(w, "scenario not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to load scenario", http.StatusInternalServerError)
		return
	}

	for _, u := range update.Vehicles {
		v := s.VehicleByID(u.ID)
		if v == nil {
			http.Error(w, "unknown vehicle "+u.ID, http.StatusBadRequest)
			return
		}
		v.CustomerID = u.CustomerID
		v.IsAvailable = u.CustomerID == nil
	}

	if err := h.store.Update(r.Context(), *s); err != nil {
		http.Error(w, "Failed to store scenario", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// LaunchScenario starts the advance loop for a scenario. The speed query
// parameter is the simulation-speed multiplier.
func (h *ScenarioHandler) LaunchScenario(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	speed := 1.0
	if raw := r.URL.Query().Get("speed"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			http.Error(w, "speed must be a positive number", http.StatusBadRequest)
			return
		}
		speed = parsed
	}

	start, err := h.engine.Launch(r.Context(), id, speed)
	if err != nil {
		if errors.Is(err, scenario.ErrNotFound) {
			http.Error(w, "scenario not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"startTime": start})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
