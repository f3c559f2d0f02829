package types

import "math"

// Coordinates is a WGS84 latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the pair is inside WGS84 bounds. The zero value is
// treated as "not geocoded".
func (c Coordinates) Valid() bool {
	if c.Latitude == 0 && c.Longitude == 0 {
		return false
	}
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) {
		return false
	}
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// Ptr returns a pointer copy, used for nullable embedded columns.
func (c Coordinates) Ptr() *Coordinates {
	return &c
}
