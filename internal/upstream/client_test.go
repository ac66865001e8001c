package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetlab/dispatch-live/internal/models"
)

func TestFetchScenario_OK(t *testing.T) {
	want := models.Scenario{
		ID:     "s1",
		Status: models.StatusRunning,
		Vehicles: []models.Vehicle{
			{ID: "v1", CoordX: 48.1351, CoordY: 11.5825, IsAvailable: true},
		},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Scenarios/get_scenario/s1", r.URL.Path)
		json.NewEncoder(w).Encode(want)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	got, err := client.FetchScenario(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	require.Len(t, got.Vehicles, 1)
	assert.Equal(t, 48.1351, got.Vehicles[0].CoordX)
}

func TestFetchScenario_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.FetchScenario(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFetchScenario_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.FetchScenario(context.Background(), "s1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestFetchScenario_Unreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 200*time.Millisecond)
	_, err := client.FetchScenario(context.Background(), "s1")
	assert.Error(t, err)
}
