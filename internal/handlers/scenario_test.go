package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetlab/dispatch-live/internal/models"
	"github.com/fleetlab/dispatch-live/internal/scenario"
	"github.com/fleetlab/dispatch-live/internal/sim"
)

func newTestServer(t *testing.T) (*httptest.Server, scenario.Store, *sim.Engine) {
	t.Helper()
	store := scenario.NewMemoryStore()
	engine := sim.NewEngine(store, 10*time.Millisecond)
	t.Cleanup(engine.StopAll)

	mux := http.NewServeMux()
	NewScenarioHandler(store, engine).Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, store, engine
}

func TestCreateScenario(t *testing.T) {
	srv, store, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/scenario/create?numberOfVehicles=2&numberOfCustomers=3", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var s models.Scenario
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&s))
	assert.Len(t, s.Vehicles, 2)
	assert.Len(t, s.Customers, 3)
	assert.Equal(t, models.StatusCreated, s.Status)

	stored, err := store.Get(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, stored.ID)
}

func TestCreateScenario_RejectsNonPositiveCounts(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/scenario/create?numberOfVehicles=0", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestInitializeScenario_RegistersCustomScenario(t *testing.T) {
	srv, store, _ := newTestServer(t)

	s := models.Scenario{
		ID:     "custom-1",
		Status: models.StatusCreated,
		Vehicles: []models.Vehicle{
			{ID: "v1", CoordX: 48.2, CoordY: 11.7, IsAvailable: true},
		},
	}
	body, _ := json.Marshal(s)

	resp, err := http.Post(srv.URL+"/Scenarios/initialize_scenario", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	stored, err := store.Get(context.Background(), "custom-1")
	require.NoError(t, err)
	assert.Equal(t, 48.2, stored.Vehicles[0].CoordX)
}

func TestGetScenario_NotFound(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/Scenarios/get_scenario/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateScenario_AssignsCustomer(t *testing.T) {
	srv, store, _ := newTestServer(t)

	s := models.Scenario{
		ID:     "s1",
		Status: models.StatusCreated,
		Vehicles: []models.Vehicle{
			{ID: "v1", CoordX: 48.13, CoordY: 11.58, IsAvailable: true},
		},
		Customers: []models.Customer{
			{ID: "c1", CoordX: 48.14, CoordY: 11.59, AwaitingService: true},
		},
	}
	require.NoError(t, store.Insert(context.Background(), s))

	customerID := "c1"
	body, _ := json.Marshal(VehiclesUpdate{
		Vehicles: []VehicleUpdate{{ID: "v1", CustomerID: &customerID}},
	})
	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/Scenarios/update_scenario/s1", bytes.NewReader(body))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	stored, err := store.Get(context.Background(), "s1")
	require.NoError(t, err)
	require.NotNil(t, stored.Vehicles[0].CustomerID)
	assert.Equal(t, "c1", *stored.Vehicles[0].CustomerID)
	assert.False(t, stored.Vehicles[0].IsAvailable)
}

func TestUpdateScenario_UnknownVehicle(t *testing.T) {
	srv, store, _ := newTestServer(t)
	require.NoError(t, store.Insert(context.Background(), models.Scenario{ID: "s1"}))

	body, _ := json.Marshal(VehiclesUpdate{Vehicles: []VehicleUpdate{{ID: "ghost"}}})
	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/Scenarios/update_scenario/s1", bytes.NewReader(body))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLaunchScenario(t *testing.T) {
	srv, store, _ := newTestServer(t)

	s := models.Scenario{ID: "s1", Status: models.StatusCreated,
		Customers: []models.Customer{
			{ID: "c1", CoordX: 48.14, CoordY: 11.59, DestinationX: 48.15, DestinationY: 11.60, AwaitingService: true},
		},
	}
	require.NoError(t, store.Insert(context.Background(), s))

	resp, err := http.Post(srv.URL+"/Runner/launch_scenario/s1?speed=2", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var launched map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&launched))
	assert.NotEmpty(t, launched["startTime"])

	stored, err := store.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRunning, stored.Status)
}

func TestLaunchScenario_BadSpeed(t *testing.T) {
	srv, store, _ := newTestServer(t)
	require.NoError(t, store.Insert(context.Background(), models.Scenario{ID: "s1"}))

	resp, err := http.Post(srv.URL+"/Runner/launch_scenario/s1?speed=-1", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLaunchScenario_NotFound(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/Runner/launch_scenario/nope", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
