// Package entity defines place search results.
package entity

// Bounds is [[south, west], [north, east]].
type Bounds [2][2]float64

// Place is a geocoding hit with a suggested map zoom.
type Place struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Zoom      int     `json:"zoom"`
	Bounds    *Bounds `json:"bounds"`
}

// ZoomFor picks a map zoom level from OpenStreetMap classification.
func ZoomFor(class, typ, addressType string) int {
	if addressType == "country" || typ == "country" {
		return 4
	}
	if addressType == "state" || typ == "state" {
		return 6
	}

	switch class {
	case "place":
		switch typ {
		case "city":
			return 10
		case "town":
			return 12
		case "village":
			return 14
		default:
			return 13
		}
	case "boundary":
		return 8
	case "highway":
		return 16
	case "amenity", "tourism", "historic":
		return 17
	case "building":
		return 18
	default:
		return 15
	}
}
