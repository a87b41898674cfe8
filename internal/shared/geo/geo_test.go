package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// metersNorth returns a point d meters due north of p.
func metersNorth(p Point, d float64) Point {
	return Point{Lat: p.Lat + d/EarthRadiusMeters*180/math.Pi, Lng: p.Lng}
}

func TestDistance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		a, b    Point
		want    float64
		epsilon float64
	}{
		{"same point", Point{10, 20}, Point{10, 20}, 0, 1e-9},
		{"one degree of latitude", Point{0, 0}, Point{1, 0}, 111195.08, 1},
		{"paris to london", Point{48.8566, 2.3522}, Point{51.5074, -0.1278}, 343560, 1000},
		{"antimeridian", Point{0, 179.9999}, Point{0, -179.9999}, 22.24, 0.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, Distance(tt.a, tt.b), tt.epsilon)
			assert.InDelta(t, Distance(tt.a, tt.b), Distance(tt.b, tt.a), 1e-9, "distance is symmetric")
		})
	}
}

func TestCheckExclusivity(t *testing.T) {
	t.Parallel()

	origin := Point{Lat: 10, Lng: 20}

	tests := []struct {
		name        string
		existing    []Point
		wantAllowed bool
	}{
		{"no pins", nil, true},
		{"far away", []Point{{Lat: -33.86, Lng: 151.2}}, true},
		{"same spot", []Point{origin}, false},
		{"five meters", []Point{metersNorth(origin, 5)}, false},
		{"just inside", []Point{metersNorth(origin, 9.99)}, false},
		{"just outside", []Point{metersNorth(origin, 10.01)}, true},
		{"one close among many", []Point{metersNorth(origin, 50), metersNorth(origin, 3), {Lat: 0, Lng: 0}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := CheckExclusivity(origin, tt.existing, ExclusivityRadiusMeters)
			assert.Equal(t, tt.wantAllowed, got.Allowed)
		})
	}
}

func TestCheckExclusivity_BoundaryIsAllowed(t *testing.T) {
	t.Parallel()

	a := Point{Lat: 0, Lng: 0}
	b := Point{Lat: 1, Lng: 0}
	d := Distance(a, b)

	assert.True(t, CheckExclusivity(a, []Point{b}, d).Allowed, "distance equal to the radius is allowed")
	assert.False(t, CheckExclusivity(a, []Point{b}, math.Nextafter(d, math.Inf(1))).Allowed)
}

func TestCheckExclusivity_Nearest(t *testing.T) {
	t.Parallel()

	origin := Point{Lat: 45, Lng: 7}
	got := CheckExclusivity(origin, []Point{metersNorth(origin, 40), metersNorth(origin, 25)}, ExclusivityRadiusMeters)
	assert.True(t, got.Allowed)
	assert.InDelta(t, 25, got.Nearest, 0.01)

	empty := CheckExclusivity(origin, nil, ExclusivityRadiusMeters)
	assert.Equal(t, -1.0, empty.Nearest)
}

func TestPoint_Valid(t *testing.T) {
	t.Parallel()

	assert.True(t, Point{Lat: 90, Lng: -180}.Valid())
	assert.False(t, Point{Lat: 90.1, Lng: 0}.Valid())
	assert.False(t, Point{Lat: 0, Lng: 180.5}.Valid())
	assert.False(t, Point{Lat: math.NaN(), Lng: 0}.Valid())
}
