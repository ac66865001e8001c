// Package geo estimates distances between geographic points on the scale of
// a single city. It uses a local planar approximation rather than a true
// great-circle formula; the error is negligible below roughly 50 km, which
// covers every trip a dispatch scenario produces.
package geo

import (
	"math"

	"github.com/fleetlab/dispatch-live/internal/models"
)

// Distance returns the approximate distance between two points in meters.
// It is symmetric, always finite and non-negative, and returns 0 for
// identical points.
func Distance(a, b models.Location) float64 {
	meanLat := (a.Lat + b.Lat) / 2 * math.Pi / 180

	// Kilometers per degree of latitude, corrected for the Earth's
	// oblateness at the mean latitude of the two points.
	kmPerDegLat := 111.13209 - 0.56605*math.Cos(2*meanLat) + 0.00120*math.Cos(4*meanLat)

	northSouth := math.Abs(a.Lat-b.Lat) * kmPerDegLat * 1000
	eastWest := math.Abs(a.Lon-b.Lon) * kmPerDegLat * math.Cos(meanLat) * 1000

	return math.Hypot(northSouth, eastWest)
}
