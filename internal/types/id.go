package types

import "github.com/google/uuid"

// ID is an opaque identifier (uuid string for entities created by this service).
type ID string

func NewID() ID {
	return ID(uuid.NewString())
}

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether p is a real coordinate. NaN and infinities fail.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}
