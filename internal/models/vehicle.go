package models

// Vehicle is one fleet vehicle as reported by the simulation engine.
//
// CoordX carries latitude and CoordY longitude. The upstream wire format is
// ambiguous about axis order, so the mapping is fixed here and nothing outside
// this package reads the raw coordinate fields; use Position instead.
type Vehicle struct {
	ID                  string   `bson:"id" json:"id"`
	CoordX              float64  `bson:"coordX" json:"coordX"`
	CoordY              float64  `bson:"coordY" json:"coordY"`
	IsAvailable         bool     `bson:"isAvailable" json:"isAvailable"`
	VehicleSpeed        *float64 `bson:"vehicleSpeed" json:"vehicleSpeed"`
	CustomerID          *string  `bson:"customerId" json:"customerId"`
	RemainingTravelTime *float64 `bson:"remainingTravelTime" json:"remainingTravelTime"`
	DistanceTravelled   *float64 `bson:"distanceTravelled" json:"distanceTravelled"`
	ActiveTime          *float64 `bson:"activeTime" json:"activeTime"`
	NumberOfTrips       *int     `bson:"numberOfTrips" json:"numberOfTrips"`
}

// Position returns the vehicle's current position.
func (v Vehicle) Position() Location {
	return Location{Lat: v.CoordX, Lon: v.CoordY}
}

// SetPosition writes a position back into the wire coordinate fields.
func (v *Vehicle) SetPosition(loc Location) {
	v.CoordX = loc.Lat
	v.CoordY = loc.Lon
}

// Speed returns the cruising speed in meters per second, or 0 when the
// engine has not reported one yet.
func (v Vehicle) Speed() float64 {
	if v.VehicleSpeed == nil {
		return 0
	}
	return *v.VehicleSpeed
}
