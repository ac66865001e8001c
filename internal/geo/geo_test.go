package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fleetlab/dispatch-live/internal/models"
)

func TestDistance_IdenticalPoints(t *testing.T) {
	p := models.Location{Lat: 48.13515, Lon: 11.5825}
	assert.Equal(t, 0.0, Distance(p, p))
}

func TestDistance_Symmetric(t *testing.T) {
	a := models.Location{Lat: 48.1351, Lon: 11.5825}
	b := models.Location{Lat: 48.1420, Lon: 11.6010}
	assert.Equal(t, Distance(a, b), Distance(b, a))
}

func TestDistance_MunichCityScale(t *testing.T) {
	// Marienplatz to the Olympiapark, roughly 4 km.
	a := models.Location{Lat: 48.13725, Lon: 11.57542}
	b := models.Location{Lat: 48.17500, Lon: 11.55180}
	d := Distance(a, b)
	assert.Greater(t, d, 4000.0)
	assert.Less(t, d, 5000.0)
}

func TestDistance_OneDegreeLatitude(t *testing.T) {
	// One degree of latitude is close to 111 km anywhere on the globe.
	a := models.Location{Lat: 48.0, Lon: 11.0}
	b := models.Location{Lat: 49.0, Lon: 11.0}
	d := Distance(a, b)
	assert.InDelta(t, 111000, d, 1000)
}

func TestDistance_Finite(t *testing.T) {
	a := models.Location{Lat: -89.9, Lon: 179.9}
	b := models.Location{Lat: 89.9, Lon: -179.9}
	d := Distance(a, b)
	assert.False(t, math.IsNaN(d))
	assert.False(t, math.IsInf(d, 0))
	assert.GreaterOrEqual(t, d, 0.0)
}
