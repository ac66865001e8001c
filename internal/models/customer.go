package models

// Customer is one ride request in a scenario. CoordX/CoordY are the pickup
// point, DestinationX/DestinationY the drop-off point; axis mapping matches
// Vehicle (X is latitude, Y is longitude).
type Customer struct {
	ID              string  `bson:"id" json:"id"`
	CoordX          float64 `bson:"coordX" json:"coordX"`
	CoordY          float64 `bson:"coordY" json:"coordY"`
	DestinationX    float64 `bson:"destinationX" json:"destinationX"`
	DestinationY    float64 `bson:"destinationY" json:"destinationY"`
	AwaitingService bool    `bson:"awaitingService" json:"awaitingService"`
}

// Position returns the customer's current (pickup) position.
func (c Customer) Position() Location {
	return Location{Lat: c.CoordX, Lon: c.CoordY}
}

// Destination returns the customer's drop-off position.
func (c Customer) Destination() Location {
	return Location{Lat: c.DestinationX, Lon: c.DestinationY}
}

// SetPosition writes a position back into the wire coordinate fields.
func (c *Customer) SetPosition(loc Location) {
	c.CoordX = loc.Lat
	c.CoordY = loc.Lon
}
