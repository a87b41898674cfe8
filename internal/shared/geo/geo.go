// Package geo implements great-circle distance and the pin exclusivity rule.
package geo

import (
	"math"
)

const (
	// EarthRadiusMeters is the mean earth radius used by common web map libraries.
	EarthRadiusMeters = 6371008.8

	// ExclusivityRadiusMeters is the minimum distance between two pins.
	ExclusivityRadiusMeters = 10.0
)

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Lat float64
	Lng float64
}

// Valid reports whether p lies within latitude/longitude bounds.
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Distance returns the haversine distance between a and b in meters.
func Distance(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := lat2 - lat1
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusMeters * c
}

// Placement is the outcome of CheckExclusivity.
type Placement struct {
	Allowed bool
	// Nearest is the distance to the closest existing pin, or -1 when there is none.
	Nearest float64
}

// CheckExclusivity rejects candidate when any existing pin is strictly closer
// than radius meters. A pin exactly radius meters away is allowed.
func CheckExclusivity(candidate Point, existing []Point, radius float64) Placement {
	res := Placement{Allowed: true, Nearest: -1}
	for _, p := range existing {
		d := Distance(candidate, p)
		if res.Nearest < 0 || d < res.Nearest {
			res.Nearest = d
		}
		if d < radius {
			res.Allowed = false
		}
	}
	return res
}
