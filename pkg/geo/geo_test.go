package geo_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/nearby/pkg/geo"
)

func TestDistance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		a, b      geo.Point
		want      float64
		tolerance float64
	}{
		{"same point", geo.Point{Latitude: 52.52, Longitude: 13.405}, geo.Point{Latitude: 52.52, Longitude: 13.405}, 0, 1e-9},
		{"berlin to paris", geo.Point{Latitude: 52.5200, Longitude: 13.4050}, geo.Point{Latitude: 48.8566, Longitude: 2.3522}, 877_500, 2_000},
		{"one degree of latitude", geo.Point{Latitude: 0, Longitude: 0}, geo.Point{Latitude: 1, Longitude: 0}, 111_195, 5},
		{"antipodes", geo.Point{Latitude: 0, Longitude: 0}, geo.Point{Latitude: 0, Longitude: 180}, math.Pi * geo.EarthRadius, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := geo.DistanceBetween(tt.a, tt.b)
			assert.InDelta(t, tt.want, got, tt.tolerance)
			assert.InDelta(t, got, geo.DistanceBetween(tt.b, tt.a), 1e-6, "distance should be symmetric")
		})
	}
}

func TestWithinRadius(t *testing.T) {
	t.Parallel()

	// Roughly 11 m apart.
	assert.True(t, geo.WithinRadius(52.52, 13.405, 52.5201, 13.405, 12))
	assert.False(t, geo.WithinRadius(52.52, 13.405, 52.5201, 13.405, 10))
	assert.True(t, geo.WithinRadius(1, 1, 1, 1, 0))
}

func TestPointValid(t *testing.T) {
	t.Parallel()

	assert.True(t, geo.Point{Latitude: -90, Longitude: 180}.Valid())
	assert.False(t, geo.Point{Latitude: 91, Longitude: 0}.Valid())
	assert.False(t, geo.Point{Latitude: 0, Longitude: -181}.Valid())
	assert.False(t, geo.Point{Latitude: math.NaN(), Longitude: 0}.Valid())
}
